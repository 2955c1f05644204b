package oracle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verbatim/pkg/oracle"
)

var _ = Describe("SessionStore", func() {
	It("creates a session on first acquire and reuses it after", func() {
		store := oracle.NewSessionStore(0)

		a := store.Acquire("alpha")
		b := store.Acquire("alpha")
		Expect(a).To(BeIdenticalTo(b))
		Expect(a.ID()).To(Equal("alpha"))
		Expect(store.Len()).To(Equal(1))
	})

	It("keeps distinct sessions independent", func() {
		store := oracle.NewSessionStore(0)

		store.Acquire("alpha")
		store.Acquire("beta")
		Expect(store.Len()).To(Equal(2))
	})

	It("starts sessions with empty history", func() {
		store := oracle.NewSessionStore(0)

		s := store.Acquire("fresh")
		Expect(s.History()).To(BeEmpty())
	})
})

var _ = Describe("Profile", func() {
	It("resolves research by name", func() {
		p := oracle.ProfileByName("research")
		Expect(p.Name).To(Equal("research"))
		Expect(p.TopK).To(Equal(20))
		Expect(p.Chunking.ChunkSize).To(Equal(2000))
	})

	It("resolves expert by name", func() {
		p := oracle.ProfileByName("expert")
		Expect(p.Name).To(Equal("expert"))
		Expect(p.TopK).To(Equal(1))
		Expect(p.Chunking.ChunkSize).To(Equal(500))
	})

	It("falls back to expert for unknown names", func() {
		p := oracle.ProfileByName("unknown")
		Expect(p.Name).To(Equal("expert"))
	})
})
