package balance_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/balance"
	"github.com/frahmantamala/hr-portal/internal/user"
)

var _ = Describe("BalanceHandler", func() {
	var (
		repo    *mockBalanceRepository
		handler *balance.Handler
		router  *chi.Mux
	)

	withPrincipal := func(p *internal.Principal) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithPrincipal(r.Context(), p)))
			})
		}
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockBalanceRepository()
		svc := balance.NewService(repo, &allowAllPolicy{denied: map[auth.Action]error{}}, logger)
		handler = balance.NewHandler(svc)

		router = chi.NewRouter()
		router.Use(withPrincipal(&internal.Principal{ID: "user-hana", Role: user.RoleHR}))
		router.Route("/api/v1/balances", func(br chi.Router) {
			br.Get("/", handler.List)
			br.Put("/{id}", handler.UpdateTotals)
		})
	})

	Describe("UpdateTotals", func() {
		It("updates the ledger row addressed by the path id", func() {
			b, err := repo.GetOrCreate(context.Background(), "emp-1", "user-dewi", 2026)
			Expect(err).ToNot(HaveOccurred())

			body := bytes.NewBufferString(`{"casualTotal": 20}`)
			req := httptest.NewRequest(http.MethodPut, "/api/v1/balances/"+b.ID, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(repo.rows["emp-1"].CasualTotal).To(Equal(20))
		})

		It("returns 404 for an unknown row id", func() {
			body := bytes.NewBufferString(`{"casualTotal": 20}`)
			req := httptest.NewRequest(http.MethodPut, "/api/v1/balances/no-such-row", body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
