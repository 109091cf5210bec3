/*
Copyright © 2023 the fixbed authors.
This file is part of fixbed.

fixbed is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fixbed is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fixbed.  If not, see <http://www.gnu.org/licenses/>.
*/

package fixbed

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ColumnFrame is one snapshot of the column profiles, sent to monitor
// clients as JSON.
type ColumnFrame struct {
	Step int     `json:"step"`
	Time float64 `json:"time"`

	// Z is the axial node position [m].
	Z []float64 `json:"z"`
	// V is the interstitial velocity profile [m/s].
	V []float64 `json:"v"`
	// Pt is the total pressure profile [Pa].
	Pt []float64 `json:"pt"`

	// P, Q, and Qeq are per-component profiles keyed by component
	// name.
	P   map[string][]float64 `json:"p"`
	Q   map[string][]float64 `json:"q"`
	Qeq map[string][]float64 `json:"qeq"`
}

// ColumnMonitor serves live column profiles over HTTP while a
// simulation is running. Clients connect to /ws and receive a
// ColumnFrame whenever an output frame is written; /profile/<name>
// renders the current profile of a variable as a PNG image.
type ColumnMonitor struct {
	upgrader websocket.Upgrader

	mx      sync.Mutex
	clients map[*websocket.Conn]bool
	frame   *ColumnFrame
}

// NewColumnMonitor initializes a new ColumnMonitor.
func NewColumnMonitor() *ColumnMonitor {
	return &ColumnMonitor{
		clients: make(map[*websocket.Conn]bool),
	}
}

func (cm *ColumnMonitor) snapshot(c *Column) *ColumnFrame {
	nn := c.NumNodes + 1
	nc := c.Nc
	f := &ColumnFrame{
		Step: c.Step - 1,
		Time: float64(c.Step-1) * c.Dt,
		Z:    make([]float64, nn),
		V:    make([]float64, nn),
		Pt:   make([]float64, nn),
		P:    make(map[string][]float64, nc),
		Q:    make(map[string][]float64, nc),
		Qeq:  make(map[string][]float64, nc),
	}
	copy(f.V, c.V)
	copy(f.Pt, c.Pt)
	for i := 0; i < nn; i++ {
		f.Z[i] = float64(i) * c.dx
	}
	for j, comp := range c.Components {
		p := make([]float64, nn)
		q := make([]float64, nn)
		qeq := make([]float64, nn)
		for i := 0; i < nn; i++ {
			p[i] = c.P[i*nc+j]
			q[i] = c.Q[i*nc+j]
			qeq[i] = c.Qeq[i*nc+j]
		}
		f.P[comp.Name] = p
		f.Q[comp.Name] = q
		f.Qeq[comp.Name] = qeq
	}
	return f
}

// serveWs upgrades a client connection and registers it for frame
// broadcasts. The read loop only watches for the client going away.
func (cm *ColumnMonitor) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cm.mx.Lock()
	cm.clients[conn] = true
	cm.mx.Unlock()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cm.mx.Lock()
				delete(cm.clients, conn)
				cm.mx.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// profileHandler renders the current profile of one variable as a PNG
// image. The variable name follows the /profile/ prefix: v, pt, or
// p_<component>, q_<component>, qeq_<component>.
func (cm *ColumnMonitor) profileHandler(w http.ResponseWriter, r *http.Request) {
	cm.mx.Lock()
	f := cm.frame
	cm.mx.Unlock()
	if f == nil {
		http.Error(w, "no column frame available yet", http.StatusServiceUnavailable)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/profile/")
	var vals []float64
	switch {
	case name == "v":
		vals = f.V
	case name == "pt":
		vals = f.Pt
	case strings.HasPrefix(name, "p_"):
		vals = f.P[strings.TrimPrefix(name, "p_")]
	case strings.HasPrefix(name, "q_"):
		vals = f.Q[strings.TrimPrefix(name, "q_")]
	case strings.HasPrefix(name, "qeq_"):
		vals = f.Qeq[strings.TrimPrefix(name, "qeq_")]
	}
	if vals == nil {
		http.Error(w, fmt.Sprintf("unknown profile variable %q", name), http.StatusNotFound)
		return
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s profile at t = %.1f s", name, f.Time)
	p.X.Label.Text = "Column position (m)"
	p.Y.Label.Text = name
	xy := make(plotter.XYs, len(vals))
	for i, v := range vals {
		xy[i].X = f.Z[i]
		xy[i].Y = v
	}
	if err := plotutil.AddLinePoints(p, xy); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	wt, err := p.WriterTo(4*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := wt.WriteTo(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Listen starts serving the monitor endpoints at address in the
// background and returns immediately. The monitor is best-effort; a
// failure to serve does not interrupt the simulation.
func (cm *ColumnMonitor) Listen(address string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", cm.serveWs)
	mux.HandleFunc("/profile/", cm.profileHandler)
	go http.ListenAndServe(address, mux)
}

// Broadcast returns a manipulator that snapshots the column and sends
// the frame to all connected monitor clients every WriteEvery steps.
// Clients whose connection fails are dropped.
func (cm *ColumnMonitor) Broadcast() ColumnManipulator {
	return func(c *Column) error {
		step := c.Step - 1
		if c.WriteEvery > 0 && step%c.WriteEvery != 0 {
			return nil
		}
		f := cm.snapshot(c)
		cm.mx.Lock()
		cm.frame = f
		for conn := range cm.clients {
			if err := conn.WriteJSON(f); err != nil {
				delete(cm.clients, conn)
				conn.Close()
			}
		}
		cm.mx.Unlock()
		return nil
	}
}
