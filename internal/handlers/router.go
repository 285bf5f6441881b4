package handlers

import (
	"net/http"

	"giftswap/internal/config"
	"giftswap/internal/db"
	"giftswap/internal/middleware"
	"giftswap/internal/storage"
	"giftswap/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner      db.TxRunner
	cfg           config.Config
	users         UserStore
	cards         CardStore
	trades        TradeStore
	evidence      EvidenceStore
	wallets       WalletStore
	ledger        LedgerStore
	withdrawals   WithdrawalStore
	bankAccounts  BankAccountStore
	notifications NotificationStore
	messages      MessageStore
	agents        AgentStore
	audit         AuditStore
	tradeService  TradeService
	payoutService WithdrawalService
	blobs         storage.BlobStore
	hub           *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, cards CardStore, trades TradeStore, evidence EvidenceStore, wallets WalletStore, ledger LedgerStore, withdrawals WithdrawalStore, bankAccounts BankAccountStore, notifications NotificationStore, messages MessageStore, agents AgentStore, audit AuditStore, tradeService TradeService, payoutService WithdrawalService, blobs storage.BlobStore, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:      txRunner,
		cfg:           cfg,
		users:         users,
		cards:         cards,
		trades:        trades,
		evidence:      evidence,
		wallets:       wallets,
		ledger:        ledger,
		withdrawals:   withdrawals,
		bankAccounts:  bankAccounts,
		notifications: notifications,
		messages:      messages,
		agents:        agents,
		audit:         audit,
		tradeService:  tradeService,
		payoutService: payoutService,
		blobs:         blobs,
		hub:           hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/cards", h.ListCards)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/trades", h.SubmitTrade)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/trades", h.ListTrades)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/trades/{id}", h.GetTrade)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/trades/evidence", h.UploadEvidence)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/withdrawals", h.SubmitWithdrawal)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/withdrawals", h.ListWithdrawals)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/bank-accounts", h.CreateBankAccount)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/bank-accounts", h.ListBankAccounts)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Delete("/bank-accounts/{id}", h.HideBankAccount)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/wallet", h.GetWallet)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/wallet/entries", h.ListWalletEntries)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/messages", h.ListMessages)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/messages", h.PostMessage)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/notifications", h.ListNotifications)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/notifications/{id}/read", h.MarkNotificationRead)
	router.Get("/ws/events", h.WSEvents)

	router.Route("/agent", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.With(middleware.RequireAgent(h.agents, "CanReviewTrades")).Get("/trades", h.AgentListTrades)
		r.With(middleware.RequireAgent(h.agents, "CanReviewTrades")).Post("/trades/{id}/review", h.ReviewTrade)
		r.With(middleware.RequireAgent(h.agents, "CanReviewWithdrawals")).Get("/withdrawals", h.AgentListWithdrawals)
		r.With(middleware.RequireAgent(h.agents, "CanReviewWithdrawals")).Post("/withdrawals/{id}/review", h.ReviewWithdrawal)
		r.With(middleware.RequireAgent(h.agents, "CanManageCatalog")).Post("/cards", h.UpsertCard)
		r.With(middleware.RequireAgent(h.agents, "CanViewUsers")).Get("/users", h.AgentListUsers)
		r.With(middleware.RequireAgent(h.agents, "")).Get("/messages/threads", h.AgentListThreads)
		r.With(middleware.RequireAgent(h.agents, "")).Get("/messages/{userID}", h.AgentListMessages)
		r.With(middleware.RequireAgent(h.agents, "")).Post("/messages/{userID}", h.AgentPostMessage)
		r.With(middleware.RequireAgent(h.agents, "")).Post("/promote", h.PromoteAgent)
		r.With(middleware.RequireAgent(h.agents, "")).Post("/roles/grant", h.GrantRole)
		r.With(middleware.RequireAgent(h.agents, "")).Get("/audit", h.ListAuditLogs)
	})

	if dir, ok := h.blobs.(interface{ Dir() string }); ok {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir.Dir()))))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
