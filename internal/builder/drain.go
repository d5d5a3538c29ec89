package builder

import (
	"iter"
)

// DrainFutures waits for every future in order and yields the results that
// are present. While a future is pending the caller helps by running queued
// tasks through steal; when nothing can be stolen it blocks on the future.
func DrainFutures(futures []*Future, steal func() bool) iter.Seq[*Result] {
	return func(yield func(*Result) bool) {
		for i, f := range futures {
			for !f.isDone() {
				if !steal() {
					<-f.Done()
				}
			}

			res, err := f.Result()
			if err != nil || res == nil {
				continue
			}
			if !yield(res) {
				for _, rest := range futures[i+1:] {
					rest.Cancel()
					if rest.isDone() {
						if r, _ := rest.Result(); r != nil {
							r.Release()
						}
					}
				}
				return
			}
		}
	}
}
