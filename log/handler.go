// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"io"
	"sync"
)

// Handler writes a Record to some destination, in some format.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a function into a Handler.
type FuncHandler func(r *Record) error

func (h FuncHandler) Log(r *Record) error { return h(r) }

// StreamHandler writes records to w using fmtr, one per line. The returned
// handler is wrapped in SyncHandler, so concurrent writes are serialized.
func StreamHandler(w io.Writer, fmtr Format) Handler {
	h := FuncHandler(func(r *Record) error {
		_, err := w.Write(fmtr.Format(r))
		return err
	})
	return SyncHandler(h)
}

// SyncHandler synchronizes concurrent writes to h with a mutex.
func SyncHandler(h Handler) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		return h.Log(r)
	})
}

// LvlFilterHandler returns a Handler that only lets records at or above
// maxLvl (i.e. severity <= maxLvl, since Lvl counts up from LvlCrit)
// through to h.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler dispatches each record to every handler in hs.
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r *Record) error {
		for _, h := range hs {
			_ = h.Log(r)
		}
		return nil
	})
}

// DiscardHandler discards every record; it's the default handler for a
// freshly constructed Logger before SetDefault/SetHandler is called.
func DiscardHandler() Handler {
	return FuncHandler(func(r *Record) error { return nil })
}

// swapHandler wraps another Handler, allowing it to be safely swapped out
// while in use, so a child Logger can keep sharing state with its parent
// after the parent's handler changes.
type swapHandler struct {
	mu sync.Mutex
	h  Handler
}

func (h *swapHandler) Log(r *Record) error {
	h.mu.Lock()
	cur := h.h
	h.mu.Unlock()
	if cur == nil {
		return nil
	}
	return cur.Log(r)
}

func (h *swapHandler) Swap(newHandler Handler) {
	h.mu.Lock()
	h.h = newHandler
	h.mu.Unlock()
}

func (h *swapHandler) Get() Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.h
}
