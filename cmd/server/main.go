package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftswap/internal/config"
	"giftswap/internal/db"
	"giftswap/internal/handlers"
	"giftswap/internal/services"
	"giftswap/internal/storage"
	"giftswap/internal/store"
	"giftswap/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	blobs, err := storage.NewDiskStore(cfg.EvidenceDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("failed to prepare evidence storage: %v", err)
	}

	users := store.NewUserStore(database)
	cards := store.NewCardStore(database)
	trades := store.NewTradeStore(database)
	evidence := store.NewEvidenceStore(database)
	wallets := store.NewWalletStore(database)
	ledger := store.NewLedgerStore(database)
	withdrawals := store.NewWithdrawalStore(database)
	bankAccounts := store.NewBankAccountStore(database)
	notifications := store.NewNotificationStore(database)
	messages := store.NewMessageStore(database)
	agents := store.NewAgentStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	tradeService := services.NewTradeService(txRunner, cards, trades, evidence, wallets, ledger, notifications, audit, hub)
	withdrawalService := services.NewWithdrawalService(txRunner, wallets, ledger, withdrawals, bankAccounts, notifications, audit, hub)

	handler := handlers.New(txRunner, cfg, users, cards, trades, evidence, wallets, ledger, withdrawals, bankAccounts, notifications, messages, agents, audit, tradeService, withdrawalService, blobs, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("giftswap API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
