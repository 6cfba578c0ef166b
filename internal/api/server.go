// Package api implements marketsim's HTTP surface, routed with
// net/http's Go 1.22+ ServeMux pattern matching — no router library.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketsim/internal/engine"
	"marketsim/internal/ids"
	"marketsim/internal/marketerr"
	"marketsim/internal/order"
	"marketsim/internal/query"
)

// Server is the HTTP server for the matching engine.
type Server struct {
	addr      string
	engine    *engine.Engine
	log       zerolog.Logger
	startTime time.Time
}

// New builds a Server bound to addr, dispatching every mutation through
// eng.
func New(addr string, eng *engine.Engine, log zerolog.Logger) *Server {
	return &Server{addr: addr, engine: eng, log: log, startTime: time.Now()}
}

// Handler builds the routed mux, separated from Run so tests can drive
// it with httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /portfolio/{id}", s.handleGetPortfolio)
	mux.HandleFunc("GET /asset", s.handleListAssets)
	mux.HandleFunc("GET /asset/{id}", s.handleGetAsset)
	mux.HandleFunc("GET /book", s.handleListBooks)
	mux.HandleFunc("GET /book/{asset}", s.handleGetBook)
	mux.HandleFunc("POST /portfolio/{p}/asset/{a}/buy", s.handlePlaceOrder(order.Buy))
	mux.HandleFunc("POST /portfolio/{p}/asset/{a}/sell", s.handlePlaceOrder(order.Sell))
	mux.HandleFunc("DELETE /portfolio/{p}/asset/{a}/order/{o}", s.handleCancelOrder)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("POST /admin/portfolio", s.handleCreatePortfolio)
	mux.HandleFunc("POST /admin/asset", s.handleCreateAsset)

	return withLogging(s.log, mux)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid portfolio id"})
		return
	}
	view, err := query.Portfolio(s.engine, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets := query.Assets(s.engine)
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid asset id"})
		return
	}
	asset, err := query.Asset(s.engine, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books := query.Books(s.engine)
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	assetID, err := uuid.Parse(r.PathValue("asset"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid asset id"})
		return
	}
	book, err := query.BookFor(s.engine, assetID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handlePlaceOrder(side order.Side) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolioID, assetID, ok := s.pathIDs(w, r, "p", "a")
		if !ok {
			return
		}

		var req placeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: formatValidationErr(err)})
			return
		}
		mode, err := req.Mode.toMode()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		expires := time.Now().Add(24 * time.Hour)
		event := engine.PlaceOrder(portfolioID, assetID, side, mode, req.Quantity, expires)
		result, err := s.engine.ProcessContext(r.Context(), event)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		resp := placeOrderResponse{OrderID: result.OrderID.String()}
		for _, t := range result.Trades {
			resp.Trades = append(resp.Trades, tradeResponse{ID: t.ID.String(), Price: t.Price, Quantity: t.Quantity})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	portfolioID, assetID, ok := s.pathIDs(w, r, "p", "a")
	if !ok {
		return
	}
	orderID, err := uuid.Parse(r.PathValue("o"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	event := engine.CancelOrder(portfolioID, assetID, orderID)
	if _, err := s.engine.ProcessContext(r.Context(), event); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.engine.Metrics().Handler().ServeHTTP(w, r)
}

// handleCreatePortfolio and handleCreateAsset are administrative bootstrap
// endpoints: they create the portfolios and assets that trading endpoints
// then operate on.
func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	s.engine.Lock()
	p := s.engine.Market().CreatePortfolio(req.InitialCoins)
	s.engine.Unlock()
	writeJSON(w, http.StatusCreated, createPortfolioResponse{PortfolioID: p.ID.String()})
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: formatValidationErr(err)})
		return
	}
	s.engine.Lock()
	asset := s.engine.Market().CreateAsset(req.Name)
	s.engine.Unlock()
	writeJSON(w, http.StatusCreated, createAssetResponse{AssetID: asset.ID.String()})
}

func (s *Server) pathIDs(w http.ResponseWriter, r *http.Request, portfolioParam, assetParam string) (ids.PortfolioID, ids.AssetID, bool) {
	portfolioID, err := uuid.Parse(r.PathValue(portfolioParam))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid portfolio id"})
		return ids.PortfolioID{}, ids.AssetID{}, false
	}
	assetID, err := uuid.Parse(r.PathValue(assetParam))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid asset id"})
		return ids.PortfolioID{}, ids.AssetID{}, false
	}
	return portfolioID, assetID, true
}

func writeEngineError(w http.ResponseWriter, err error) {
	kind, ok := marketerr.KindOf(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, kind.HTTPStatus(), errorResponse{Error: kind.String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
