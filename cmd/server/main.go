package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Aspandiyar933/poker/internal/gateway"
	"github.com/Aspandiyar933/poker/internal/ledger"
	"github.com/Aspandiyar933/poker/internal/lobby"
)

func main() {
	ledgerService, err := ledger.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger service: %v", err)
	}
	defer ledgerService.Close()

	lby := lobby.New(lobby.Config{
		Ledger:  ledgerService,
		IdleTTL: tableTTLFromEnv(),
	})
	defer lby.Stop()
	gw := gateway.New(lby)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/tables", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"tables": lby.ListTables(),
		})
	})

	addr := os.Getenv("POKER_ADDR")
	if addr == "" {
		addr = ":3001"
	}
	log.Printf("[Server] Starting WebSocket server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}

func tableTTLFromEnv() time.Duration {
	raw := os.Getenv("POKER_TABLE_TTL")
	if raw == "" {
		return 0
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("[Server] Invalid POKER_TABLE_TTL %q: %v", raw, err)
	}
	return ttl
}
