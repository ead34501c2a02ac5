package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/walletledger/internal/adapter/http/dto"
)

func writeFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.Fail(msg))
}
