package spjs

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// SPJS is a client for a Serial Port JSON Server, which exposes the serial
// ports of a remote host over a websocket.
type SPJS struct {
	url string

	outgoing  chan message
	incomming chan interface{}
	closeCh   chan struct{}
	closed    int32
}

type message struct {
	done    chan struct{}
	payload []byte
}

type DataFrame struct {
	Port string `json:"P"`
	Data string `json:"D"`
}
type CmdStatus struct {
	Cmd        string
	QueueCount int `json:"QCnt"`
	Type       []string
	Data       []string `json:"D"`
	ID         string   `json:"Id"`
}

type ErrorMessage struct {
	Error string
}
type SerialPortList struct {
	SerialPorts []SerialPort
}
type SerialPort struct {
	Name         string
	Friendly     string
	SerialNumber string
	IsOpen       bool
	Baud         int
}

var lastID int64

func nextID() string {
	id := atomic.AddInt64(&lastID, 1)
	return "cmd_" + strconv.FormatInt(id, 36)
}

func NewSPJS(url string) *SPJS {
	sp := newSPJS(url)
	go sp.loop()
	return sp
}

func newSPJS(url string) *SPJS {
	return &SPJS{
		url:       url,
		outgoing:  make(chan message, 1000),
		incomming: make(chan interface{}, 1000),
		closeCh:   make(chan struct{}),
	}
}

func (sp *SPJS) Messages() chan interface{} {
	return sp.incomming
}

// Close stops reconnecting and unblocks pending reads and writes.
func (sp *SPJS) Close() error {
	if atomic.CompareAndSwapInt32(&sp.closed, 0, 1) {
		close(sp.closeCh)
	}
	return nil
}

func parseSPJSMessage(data []byte, msg map[string]json.RawMessage) (val interface{}, err error) {
	check := func(fieldName string, v interface{}) bool {
		if msg[fieldName] == nil {
			return false
		}
		val = v
		err = json.Unmarshal(data, val)
		return true
	}
	if check("Error", &ErrorMessage{}) {
		return
	}
	if check("SerialPorts", &SerialPortList{}) {
		return
	}
	if check("Type", &CmdStatus{}) {
		return
	}
	if check("Cmd", &CmdStatus{}) {
		return
	}
	if check("D", &DataFrame{}) {
		return
	}

	return nil, errors.New("unknown message: " + string(data))
}

func (sp *SPJS) readLoop(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			log.Println("ERROR: spjs read:", err)
			return
		}
		if !bytes.HasPrefix(data, []byte("{")) {
			// ignore echo messages
			continue
		}
		var msg map[string]json.RawMessage
		err = json.Unmarshal(data, &msg)
		if err != nil {
			log.Println("ERROR: spjs read:", err)
			continue
		}
		val, err := parseSPJSMessage(data, msg)
		if err != nil {
			log.Println("ERROR: spjs parse:", err)
			continue
		}
		select {
		case sp.incomming <- val:
		case <-sp.closeCh:
			return
		}
	}
}

func (sp *SPJS) loop() {
	var nextUp message

reconnect:
	for {
		select {
		case <-sp.closeCh:
			return
		default:
		}
		log.Println("Connecting to", sp.url)
		ws, _, err := websocket.DefaultDialer.Dial(sp.url, nil)
		if err != nil {
			log.Println("ERROR: spjs connect:", err)
			time.Sleep(3 * time.Second)
			continue
		}
		log.Println("Connected.")
		ch := make(chan struct{})
		go sp.readLoop(ws, ch)
		go sp.WriteString("list") // refresh list on reconnect

		for {
			if nextUp.done != nil {
				err = ws.WriteMessage(websocket.TextMessage, nextUp.payload)
				if err != nil {
					log.Println("ERROR: spjs send:", err)
					ws.Close()
					continue reconnect
				}
				close(nextUp.done)
				nextUp.done = nil
			}

			select {
			case <-ch:
				continue reconnect
			case <-sp.closeCh:
				ws.Close()
				return
			case nextUp = <-sp.outgoing:
			}
		}
	}
}

type JSON struct {
	Port string `json:"P"`
	Data []Data
}
type Data struct {
	Data string `json:"D"`
	ID   string `json:"Id"`
}

// SendJSON queues v and blocks until it has been written to the websocket.
func (sp *SPJS) SendJSON(v JSON) error {
	data, err := json.Marshal(v)
	if err != nil {
		// shouldn't happen since we control everything that's sent out
		log.Panicln("ERROR: sendjson (marshal):", err)
	}

	return sp.send(append([]byte("sendjson "), data...))
}

// WriteString sends a raw SPJS command.
func (sp *SPJS) WriteString(data string) error {
	return sp.send([]byte(data))
}

func (sp *SPJS) send(payload []byte) error {
	select {
	case <-sp.closeCh:
		return errClosed
	default:
	}

	ch := make(chan struct{})
	select {
	case sp.outgoing <- message{done: ch, payload: payload}:
	case <-sp.closeCh:
		return errClosed
	}
	select {
	case <-ch:
		return nil
	case <-sp.closeCh:
		return errClosed
	}
}
