package coin

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Antkiler2012/Coin-Vault/internal/search"
	"github.com/Antkiler2012/Coin-Vault/internal/verify"
)

// tinyPNG encodes a 1x1 PNG for upload fixtures
func tinyPNG() []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// scanForm builds a multipart form with front and back coin faces
func scanForm(front, back []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, data := range map[string][]byte{"front": front, "back": back} {
		if data == nil {
			continue
		}
		part, err := writer.CreateFormFile(field, field+".png")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(data)
		Expect(err).NotTo(HaveOccurred())
	}
	Expect(writer.Close()).NotTo(HaveOccurred())
	return body, writer.FormDataContentType()
}

var _ = Describe("Server", func() {
	var (
		recognizer *mockRecognizer
		searcher   *mockSearcher
		verifier   *mockVerifier
		db         *mockDB
		storage    *mockStorage
		payloads   *PayloadCache
		onboarding *OnboardingFlag
		basicAuth  BasicAuth
		server     *Server

		rec *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		recognizer = newMockRecognizer()
		searcher = &mockSearcher{}
		verifier = &mockVerifier{verdict: &verify.Verdict{SingleCoin: true, Rating: "fair"}}
		db = newMockDB()
		storage = newMockStorage()
		basicAuth = BasicAuth{}

		var err error
		payloads, err = NewPayloadCacheWithIDGenerator(8, &fixedIDGenerator{id: "scan", many: true})
		Expect(err).NotTo(HaveOccurred())
		onboarding = NewOnboardingFlag(GinkgoT().TempDir() + "/.onboarded")

		rec = httptest.NewRecorder()
	})

	JustBeforeEach(func() {
		estimator := NewEstimator(recognizer, searcher, verifier, NewMetrics())
		service := NewServiceWithDeps(db, storage, &fixedIDGenerator{id: "coin-1"}, &fixedTimeSource{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
		server = NewServer(estimator, service, payloads, onboarding, NewMetrics(), basicAuth)
	})

	Describe("the scan flow", func() {
		It("stages a scan and estimates it", func() {
			recognizer.texts["front-bytes"] = "POLSKA 2015"
			recognizer.texts["back-bytes"] = "50 GROSZY"
			searcher.listings = []search.Listing{
				{Title: "Poland 50 Groszy 2015 coin", ExtractedPrice: floatPtr(0.5)},
			}

			body, contentType := scanForm([]byte("front-bytes"), []byte("back-bytes"))
			req := httptest.NewRequest("POST", "/api/scans", body)
			req.Header.Set("Content-Type", contentType)
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			var created map[string]string
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).NotTo(HaveOccurred())
			Expect(created).To(HaveKey("id"))

			rec = httptest.NewRecorder()
			req = httptest.NewRequest("POST", "/api/scans/"+created["id"]+"/estimate", strings.NewReader("{}"))
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var result StatsResult
			Expect(json.Unmarshal(rec.Body.Bytes(), &result)).NotTo(HaveOccurred())
			Expect(result.Avg).To(HaveValue(Equal(0.5)))
			Expect(result.Count).To(Equal(1))

			// The staged payload is single-use
			rec = httptest.NewRecorder()
			req = httptest.NewRequest("POST", "/api/scans/"+created["id"]+"/estimate", strings.NewReader("{}"))
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects a scan missing a face", func() {
			body, contentType := scanForm([]byte("front-bytes"), nil)
			req := httptest.NewRequest("POST", "/api/scans", body)
			req.Header.Set("Content-Type", contentType)
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown scan id", func() {
			req := httptest.NewRequest("POST", "/api/scans/nope/estimate", strings.NewReader("{}"))
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 422 when nothing sellable is found", func() {
			searcher.listings = nil
			id := payloads.Put(ScanPayload{Front: []byte("f"), Back: []byte("b")})

			req := httptest.NewRequest("POST", "/api/scans/"+id+"/estimate", strings.NewReader("{}"))
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("returns 400 for a malformed year override and keeps the payload staged", func() {
			id := payloads.Put(ScanPayload{Front: []byte("f"), Back: []byte("b")})

			req := httptest.NewRequest("POST", "/api/scans/"+id+"/estimate", strings.NewReader(`{"year":"20x5"}`))
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			_, ok := payloads.Get(id)
			Expect(ok).To(BeTrue())
		})

		It("returns 422 when the photos do not show a single coin", func() {
			verifier.verdict = &verify.Verdict{SingleCoin: false, Reason: "two coins visible"}
			searcher.listings = []search.Listing{
				{Title: "Some coin", ExtractedPrice: floatPtr(2)},
			}
			id := payloads.Put(ScanPayload{Front: []byte("f"), Back: []byte("b")})

			req := httptest.NewRequest("POST", "/api/scans/"+id+"/estimate", strings.NewReader("{}"))
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		})
	})

	Describe("the collection", func() {
		It("adds, lists and removes a coin", func() {
			payload := fmt.Sprintf(`{"title":"Poland 50 Groszy 2015","avg":0.5,"image":%q}`,
				base64.StdEncoding.EncodeToString(tinyPNG()))
			req := httptest.NewRequest("POST", "/api/coins", strings.NewReader(payload))
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			var coin CollectedCoin
			Expect(json.Unmarshal(rec.Body.Bytes(), &coin)).NotTo(HaveOccurred())
			Expect(coin.ID).To(Equal("coin-1"))
			Expect(coin.Image).To(Equal("coin-1.png"))

			rec = httptest.NewRecorder()
			req = httptest.NewRequest("GET", "/api/coins", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var coins []CollectedCoin
			Expect(json.Unmarshal(rec.Body.Bytes(), &coins)).NotTo(HaveOccurred())
			Expect(coins).To(HaveLen(1))

			rec = httptest.NewRecorder()
			req = httptest.NewRequest("GET", "/api/coins/coin-1/image", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("image/png"))

			rec = httptest.NewRecorder()
			req = httptest.NewRequest("DELETE", "/api/coins/coin-1", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
			Expect(db.coins).To(BeEmpty())
		})

		It("rejects a coin without a title", func() {
			req := httptest.NewRequest("POST", "/api/coins", strings.NewReader(`{"avg":0.5}`))
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects an image that is not base64", func() {
			req := httptest.NewRequest("POST", "/api/coins", strings.NewReader(`{"title":"Coin","image":"not!!base64"}`))
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 when removing an unknown coin", func() {
			req := httptest.NewRequest("DELETE", "/api/coins/nope", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("the onboarding flag", func() {
		It("round-trips set and clear", func() {
			req := httptest.NewRequest("GET", "/api/onboarding", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Body.String()).To(MatchJSON(`{"onboarded":false}`))

			rec = httptest.NewRecorder()
			req = httptest.NewRequest("POST", "/api/onboarding", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))

			rec = httptest.NewRecorder()
			req = httptest.NewRequest("GET", "/api/onboarding", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Body.String()).To(MatchJSON(`{"onboarded":true}`))

			rec = httptest.NewRecorder()
			req = httptest.NewRequest("DELETE", "/api/onboarding", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
			Expect(onboarding.Exists()).To(BeFalse())
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			basicAuth = BasicAuth{Username: "admin", Password: "secret"}
		})

		It("rejects requests without credentials", func() {
			req := httptest.NewRequest("GET", "/api/coins", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		})

		It("rejects wrong credentials", func() {
			req := httptest.NewRequest("GET", "/api/coins", nil)
			req.SetBasicAuth("admin", "wrong")
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("accepts correct credentials", func() {
			req := httptest.NewRequest("GET", "/api/coins", nil)
			req.SetBasicAuth("admin", "secret")
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("metrics", func() {
		It("exposes the registry", func() {
			req := httptest.NewRequest("GET", "/metrics", nil)
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})
})
