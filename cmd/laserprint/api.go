package main

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"sync"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"

	"github.com/mastercactapus/laserprint/machine"
)

const statusChannel = "/events/status"

// api publishes job progress over HTTP. It never drives the machine.
type api struct {
	http.Handler
	sse *sse.Server

	mx   sync.Mutex
	last machine.State
}

func newAPI() *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(ioutil.Discard, "", 0),
		}),
	}

	r.HandleFunc("/api/status", a.status).Methods("GET")
	r.PathPrefix("/events/").Handler(a.sse)

	return a
}

// watch forwards updates until the job is done or stop is closed.
func (a *api) watch(states <-chan machine.State, stop <-chan struct{}) {
	for {
		select {
		case state := <-states:
			a.update(state)
			if state.Done {
				return
			}
		case <-stop:
			return
		}
	}
}

func (a *api) update(state machine.State) {
	a.mx.Lock()
	if a.last.Done {
		a.mx.Unlock()
		return
	}
	a.last = state
	a.mx.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("ERROR: marshal json: %+v", err)
		return
	}
	a.sse.SendMessage(statusChannel, sse.SimpleMessage(string(data)))
}

func (a *api) status(w http.ResponseWriter, req *http.Request) {
	a.mx.Lock()
	state := a.last
	a.mx.Unlock()

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(state)
	if err != nil {
		log.Printf("ERROR: write status: %+v", err)
	}
}

func (a *api) Close() { a.sse.Shutdown() }

// serve runs the events server in the background.
func (a *api) serve(addr string) *http.Server {
	srv := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			a.ServeHTTP(w, req)
		}),
	}
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Printf("ERROR: events server: %+v", err)
		}
	}()
	return srv
}
