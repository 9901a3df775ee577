package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/courtside/internal/adapters/mq/worker"
	model "github.com/okian/courtside/internal/domain/model"
	logging "github.com/okian/courtside/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan model.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan model.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan model.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.jobs) })
	return nil
}

type mockRunner struct {
	mu   sync.Mutex
	seen []string
	fail map[string]error
	done chan string
}

func newMockRunner() *mockRunner {
	return &mockRunner{fail: map[string]error{}, done: make(chan string, 10)}
}

func (r *mockRunner) Process(ctx context.Context, job model.Job) error {
	r.mu.Lock()
	r.seen = append(r.seen, job.ID)
	err := r.fail[job.ID]
	r.mu.Unlock()
	r.done <- job.ID
	return err
}

func (r *mockRunner) processed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job")
		return ""
	}
}

func TestWorker(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	convey.Convey("Given a worker with a runner", t, func() {
		q := newMockQueue()
		r := newMockRunner()
		w := worker.NewInMemoryWorker(q, r, worker.WithName("w-test"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When jobs arrive", func() {
			q.jobs <- model.Job{ID: "a"}
			r.fail["b"] = errors.New("boom")
			q.jobs <- model.Job{ID: "b"}
			q.jobs <- model.Job{ID: "c"}

			convey.Convey("Then every job is processed even after a failure", func() {
				waitFor(t, r.done)
				waitFor(t, r.done)
				waitFor(t, r.done)
				convey.So(r.processed(), convey.ShouldResemble, []string{"a", "b", "c"})
			})
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	convey.Convey("Given a pool of three workers", t, func() {
		q := newMockQueue()
		r := newMockRunner()
		p := worker.NewPool(3, q, r)
		convey.So(p.Size(), convey.ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		for _, id := range []string{"1", "2", "3", "4"} {
			q.jobs <- model.Job{ID: id}
		}
		for i := 0; i < 4; i++ {
			waitFor(t, r.done)
		}

		convey.Convey("Then all jobs run once", func() {
			convey.So(r.processed(), convey.ShouldHaveLength, 4)
		})

		convey.Convey("Then shutdown closes the queue and stops workers", func() {
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
			_, open := <-q.jobs
			convey.So(open, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		p := worker.NewPool(0, newMockQueue(), newMockRunner())
		convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
