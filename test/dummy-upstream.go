package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Fake licensing and voucher upstream for local runs. Point LUARMOR_API_URL
// and XPLUEM_API_BASE at :3001 and the gateway works without real providers.
func main() {
	http.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodGet {
			key := r.URL.Query().Get("user_key")
			if key == "" {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"success": false, "message": "Key not found", "users": []}`)
				return
			}
			fmt.Fprintf(w, `{"success": true, "message": "ok", "users": [{"user_key": "%s", "status": "active", "last_reset": %d, "auth_expire": %d, "total_executions": 42}]}`,
				key, time.Now().Unix()-3600, time.Now().Add(24*time.Hour).Unix())
			return
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"success": false, "message": "bad payload"}`)
			return
		}
		log.Printf("Minting key for discord_id=%v", payload["discord_id"])
		fmt.Fprintf(w, `{"success": true, "message": "key created", "user_key": "test_%08x"}`, rand.Int63())
	})

	http.HandleFunc("/users/resetkey", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success": true, "message": "HWID reset"}`)
	})

	// Voucher redemption: any code containing "bad" fails, everything else
	// is worth 50.00.
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "bad") {
			fmt.Fprint(w, `{"success": false, "message": "Voucher expired"}`)
			return
		}
		fmt.Fprint(w, `{"success": true, "message": "redeemed", "data": {"name": "tester", "amount": "50.00"}}`)
	})

	log.Println("Dummy upstream starting on :3001")
	if err := http.ListenAndServe(":3001", nil); err != nil {
		log.Fatal(err)
	}
}
