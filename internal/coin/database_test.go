package coin

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveCoin", func() {
		var (
			coin *CollectedCoin
			err  error
		)

		BeforeEach(func() {
			coin = &CollectedCoin{
				ID:      "test-id",
				Title:   "Poland 50 Groszy 2015",
				Avg:     floatPtr(0.5),
				Image:   "test-id.png",
				AddedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveCoin(coin)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the coin to the database", func() {
				saved, getErr := db.GetCoin("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("test-id"))
				Expect(saved.Title).To(Equal("Poland 50 Groszy 2015"))
				Expect(saved.Avg).To(HaveValue(Equal(0.5)))
			})
		})
	})

	Describe("GetCoin", func() {
		When("the coin does not exist", func() {
			It("returns an error", func() {
				_, err := db.GetCoin("nonexistent")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("ListCoins", func() {
		When("several coins exist", func() {
			BeforeEach(func() {
				older := &CollectedCoin{ID: "older", Title: "Older", AddedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
				newer := &CollectedCoin{ID: "newer", Title: "Newer", AddedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}
				Expect(db.SaveCoin(older)).NotTo(HaveOccurred())
				Expect(db.SaveCoin(newer)).NotTo(HaveOccurred())
			})

			It("returns them newest first", func() {
				coins, err := db.ListCoins()
				Expect(err).NotTo(HaveOccurred())
				Expect(coins).To(HaveLen(2))
				Expect(coins[0].ID).To(Equal("newer"))
				Expect(coins[1].ID).To(Equal("older"))
			})
		})

		When("the database is empty", func() {
			It("returns an empty slice", func() {
				coins, err := db.ListCoins()
				Expect(err).NotTo(HaveOccurred())
				Expect(coins).To(BeEmpty())
			})
		})
	})

	Describe("DeleteCoin", func() {
		BeforeEach(func() {
			Expect(db.SaveCoin(&CollectedCoin{ID: "test-id", Title: "Test"})).NotTo(HaveOccurred())
		})

		It("removes the coin", func() {
			Expect(db.DeleteCoin("test-id")).NotTo(HaveOccurred())
			_, err := db.GetCoin("test-id")
			Expect(err).To(HaveOccurred())
		})
	})
})
