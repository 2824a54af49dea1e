// Command scalesim emulates the scale-side weight server for local
// development. It answers GET /get_weight the way the real device process
// does and can optionally push each reading to the weighbridge API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

type simulator struct {
	mu     sync.Mutex
	weight float64

	fixed  float64
	loaded bool
}

// next produces the reading for the current tick. With a fixed weight it
// jitters around that value like an idling bridge; otherwise it alternates
// between loaded and empty truck ranges.
func (s *simulator) next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fixed > 0 {
		s.weight = s.fixed + rand.Float64()*10 - 5
	} else if s.loaded {
		s.weight = 25000 + rand.Float64()*10000
	} else {
		s.weight = 10000 + rand.Float64()*5000
	}
	s.loaded = !s.loaded
	return s.weight
}

func (s *simulator) current() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weight
}

func main() {
	port := flag.Int("port", 5001, "port to listen on")
	fixed := flag.Float64("weight", 0, "fixed weight in KG (0 = alternate loaded/empty)")
	interval := flag.Duration("interval", time.Second, "weight refresh interval")
	pushURL := flag.String("push", "", "weighbridge endpoint to POST readings to (e.g. http://localhost:3210/scale/receive_weight)")
	scaleID := flag.Int64("scale", 0, "scale id to include in pushed readings")
	flag.Parse()

	sim := &simulator{fixed: *fixed}
	sim.next()

	go func() {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for range ticker.C {
			w := sim.next()
			if *pushURL != "" {
				pushReading(*pushURL, w, *scaleID)
			}
		}
	}()

	http.HandleFunc("/get_weight", func(w http.ResponseWriter, r *http.Request) {
		reading := sim.current()
		log.Printf("⚖️ Request from %s → Weight: %.2f kg", r.RemoteAddr, reading)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"weight":  reading,
			"success": true,
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("🚀 Scale simulator listening on http://localhost%s/get_weight", addr)
	if *pushURL != "" {
		log.Printf("📤 Pushing readings to %s every %s", *pushURL, *interval)
	}
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func pushReading(url string, weight float64, scaleID int64) {
	payload := map[string]interface{}{"weight": weight}
	if scaleID > 0 {
		payload["scale_id"] = scaleID
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Push failed: %v", err)
		return
	}
	defer resp.Body.Close()
	log.Printf("📤 Pushed %.2f kg → %s", weight, resp.Status)
}
