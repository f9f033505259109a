package server

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sonnes/obsession/memory"
	"github.com/sonnes/obsession/search"
)

var errBadName = errors.New("invalid name")

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.Reader.Characters()
	if err != nil {
		s.Logger.Warn("list characters", "err", err)
	}
	s.respond(w, r, "text/html; charset=utf-8", func(w io.Writer) error {
		return s.HTML.RenderIndex(w, names)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "character")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.loadCharacter(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	st := s.Stats.AggregateChat(c)
	if st.Unparsed > 0 {
		s.Logger.Debug("unparsed send dates", "character", name, "count", st.Unparsed)
	}
	s.respond(w, r, "text/html; charset=utf-8", func(w io.Writer) error {
		return s.HTML.RenderStats(w, name, st)
	})
}

func (s *Server) handleStatsJSON(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "character")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.loadCharacter(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	st := s.Stats.AggregateChat(c)
	s.respond(w, r, "application/json", func(w io.Writer) error {
		return s.JSON.Render(w, st)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "character")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.loadCharacter(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	q := r.URL.Query().Get("q")
	hits := search.Messages(c.Messages, q)
	s.respond(w, r, "text/html; charset=utf-8", func(w io.Writer) error {
		return s.HTML.RenderSearchPage(w, name, q, hits)
	})
}

func (s *Server) handleMemories(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "key")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	store, err := memory.ReadFile(s.MemoryFile)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	q := r.URL.Query().Get("q")
	fuzzy := r.URL.Query().Get("fuzzy") == "1"
	list := memory.Filter(store.List(key, memory.FallbackKey(key)), q, fuzzy)
	s.respond(w, r, "text/html; charset=utf-8", func(w io.Writer) error {
		return s.HTML.RenderMemoriesPage(w, key, list, q, fuzzy)
	})
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "key")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	text := r.PostFormValue("text")
	date := r.PostFormValue("date")

	err = s.updateStore(func(st *memory.Store) error {
		m, err := st.Add(key, text, date)
		if err == nil {
			s.Logger.Info("memory collected", "key", key, "id", m.ID)
		}
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, memoriesPath(key), http.StatusSeeOther)
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "key")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	title := strings.TrimSpace(r.PostFormValue("title"))

	if err := s.updateStore(func(st *memory.Store) error {
		return st.SetTitle(key, id, title)
	}); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, memoriesPath(key), http.StatusSeeOther)
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "key")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")

	if err := s.updateStore(func(st *memory.Store) error {
		return st.Remove(key, id)
	}); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, memoriesPath(key), http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "key")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	store, err := memory.ReadFile(s.MemoryFile)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	list := store.List(key, memory.FallbackKey(key))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": memory.ExportFilename(key),
	}))
	s.respond(w, r, "application/zip", func(w io.Writer) error {
		return memory.Export(w, list)
	})
}

// updateStore runs fn on the current store and saves the result. Calls are
// serialized so concurrent form posts do not lose writes.
func (s *Server) updateStore(fn func(*memory.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := memory.ReadFile(s.MemoryFile)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return st.WriteFile(s.MemoryFile)
}

// respond renders into a buffer first so a failed render turns into a clean
// 500 instead of a truncated page.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, contentType string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = buf.WriteTo(w)
}

// fail maps err to a status code and writes a short message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.Logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	w.Header().Del("Content-Disposition")
	http.Error(w, http.StatusText(status), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadName), errors.Is(err, memory.ErrEmpty):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, errNoChats), errors.Is(err, memory.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, memory.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// pathParam returns a decoded route parameter. Names that could escape the
// chats directory are rejected.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if dec, err := url.PathUnescape(v); err == nil {
		v = dec
	}
	if v == "" || v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return "", errBadName
	}
	return v, nil
}

func memoriesPath(key string) string {
	return "/m/" + url.PathEscape(key)
}
