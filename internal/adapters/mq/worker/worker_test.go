package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/thrive/internal/adapters/mq/worker"
	model "github.com/okian/thrive/internal/domain/model"
	logging "github.com/okian/thrive/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	items chan model.CheckIn
	once  sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{items: make(chan model.CheckIn, 128)}
}

func (mq *mockQueue) Dequeue() <-chan model.CheckIn { return mq.items }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.items) })
	return nil
}

type mockProcessor struct {
	mu        sync.Mutex
	processed map[string]int
	failFor   map[string]error
}

func newMockProcessor() *mockProcessor {
	return &mockProcessor{processed: map[string]int{}, failFor: map[string]error{}}
}

func (mp *mockProcessor) Process(_ context.Context, c model.CheckIn) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if err, ok := mp.failFor[c.UserID]; ok {
		return err
	}
	mp.processed[c.ID]++
	return nil
}

func (mp *mockProcessor) count(id string) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.processed[id]
}

func (mp *mockProcessor) total() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	n := 0
	for _, v := range mp.processed {
		n += v
	}
	return n
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		p := newMockProcessor()
		w := worker.NewInMemoryWorker(q, p, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a check-in is queued", func() {
			q.items <- model.CheckIn{ID: "c-1", UserID: "u-1"}

			convey.Convey("Then it is processed once", func() {
				convey.So(eventually(func() bool { return p.count("c-1") == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When processing fails", func() {
			p.failFor["u-bad"] = errors.New("boom")
			q.items <- model.CheckIn{ID: "c-bad", UserID: "u-bad"}
			q.items <- model.CheckIn{ID: "c-2", UserID: "u-2"}

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { return p.count("c-2") == 1 }), convey.ShouldBeTrue)
				convey.So(p.count("c-bad"), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the queue is closed", func() {
			_ = q.Close()

			convey.Convey("Then Run returns", func() {
				waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
				defer waitCancel()
				convey.So(w.Wait(waitCtx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When stopped", func() {
			w.Stop()
			w.Stop()

			convey.Convey("Then Run returns", func() {
				waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
				defer waitCancel()
				convey.So(w.Wait(waitCtx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then Run returns", func() {
				waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
				defer waitCancel()
				convey.So(w.Wait(waitCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		p := newMockProcessor()

		convey.Convey("When check-ins are queued before shutdown", func() {
			q2 := newMockQueue()
			pool := worker.NewPool([]worker.Queue{q, q2}, p)
			pool.Start(context.Background())

			const n = 100
			for i := 0; i < n; i++ {
				target := q
				if i%2 == 1 {
					target = q2
				}
				target.items <- model.CheckIn{ID: fmt.Sprintf("c-%d", i), UserID: "u"}
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err := pool.Shutdown(ctx)

			convey.Convey("Then every check-in is drained exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.total(), convey.ShouldEqual, n)
				for i := 0; i < n; i++ {
					convey.So(p.count(fmt.Sprintf("c-%d", i)), convey.ShouldEqual, 1)
				}
			})
		})

		convey.Convey("When stopped without draining", func() {
			pool := worker.NewPool([]worker.Queue{q, newMockQueue()}, p)
			pool.Start(context.Background())
			pool.Stop()

			convey.Convey("Then workers have returned", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 2)
			})
		})
	})
}
