package budget

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("userLocks", func() {
	It("times out a second holder and drops released entries", func() {
		locks := newUserLocks()

		unlock, err := locks.acquire(context.Background(), 1)
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = locks.acquire(ctx, 1)
		Expect(err).To(MatchError(context.DeadlineExceeded))

		other, err := locks.acquire(context.Background(), 2)
		Expect(err).NotTo(HaveOccurred())
		other()

		unlock()
		Expect(locks.size()).To(Equal(0))
	})
})
