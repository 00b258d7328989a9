package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/paulwritescode/minidb/internal/config"
	"github.com/paulwritescode/minidb/internal/storage"
	"github.com/paulwritescode/minidb/internal/types"
)

// Server is the HTTP and WebSocket front end. The engine itself is
// single-caller synchronous, so every command, snapshot and archive export
// runs under one mutex.
type Server struct {
	db      *storage.Database
	persist *storage.Persistence
	auth    *authenticator

	mu sync.Mutex

	syncInterval time.Duration
	stopSync     chan struct{}
}

// New builds a server around an existing database and persistence bundle.
func New(db *storage.Database, persist *storage.Persistence, cfg *config.Config) *Server {
	return &Server{
		db:           db,
		persist:      persist,
		auth:         newAuthenticator(cfg.Server.Auth.Username, cfg.Server.Auth.Password),
		syncInterval: cfg.Archive.SyncInterval,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/execute", s.requireAuth(s.handleExecute))
	mux.HandleFunc("/tables", s.requireAuth(s.handleTables))
	mux.HandleFunc("/tables/", s.requireAuth(s.handleTable))
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// StartArchiveWorker begins periodic archive exports when an interval and an
// archive directory are configured.
func (s *Server) StartArchiveWorker() {
	if s.syncInterval <= 0 || s.persist == nil || s.persist.Archive() == nil {
		return
	}
	s.stopSync = make(chan struct{})
	ticker := time.NewTicker(s.syncInterval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				err := s.persist.ExportArchive(s.db)
				s.mu.Unlock()
				if err != nil {
					types.GlobalLogger.Warning("archive export failed: %v", err)
				}
			case <-s.stopSync:
				ticker.Stop()
				return
			}
		}
	}()
}

// StopArchiveWorker stops the periodic export.
func (s *Server) StopArchiveWorker() {
	if s.stopSync != nil {
		close(s.stopSync)
		s.stopSync = nil
	}
}

// execute runs one command exclusively and applies autosave on mutation.
func (s *Server) execute(sql string) (*storage.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecuteCommand(sql)
	if err != nil {
		return nil, err
	}
	if res.Mutation && s.persist != nil {
		if err := s.persist.AfterWrite(s.db); err != nil {
			types.GlobalLogger.Warning("autosave failed: %v", err)
		}
	}
	return res, nil
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func kindStatus(kind types.Kind) int {
	switch kind {
	case types.ParseError, types.SchemaError, types.TypeMismatch:
		return http.StatusBadRequest
	case types.ConstraintViolation:
		return http.StatusConflict
	case types.ColumnNotFound, types.TableNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		types.GlobalLogger.Error("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var e *types.Error
	if errors.As(err, &e) {
		writeJSON(w, kindStatus(e.Kind), map[string]errorBody{
			"error": {Kind: e.Kind.String(), Message: e.Message},
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]errorBody{
		"error": {Kind: "internal", Message: err.Error()},
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !s.auth.verify(token) {
			writeJSON(w, http.StatusUnauthorized, map[string]errorBody{
				"error": {Kind: "unauthorized", Message: "missing or invalid token"},
			})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{
			"error": {Kind: "bad request", Message: "malformed login body"},
		})
		return
	}
	token, ok := s.auth.login(req.Username, req.Password)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]errorBody{
			"error": {Kind: "unauthorized", Message: "invalid credentials"},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		SQL string `json:"sql"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{
			"error": {Kind: "bad request", Message: "malformed request body"},
		})
		return
	}
	res, err := s.execute(req.SQL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type tableInfo struct {
	Name     string   `json:"name"`
	RowCount int      `json:"row_count"`
	Indexes  []string `json:"indexes"`
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	infos := []tableInfo{}
	for _, name := range s.db.ListTables() {
		t, err := s.db.Table(name)
		if err != nil {
			continue
		}
		infos = append(infos, tableInfo{
			Name:     name,
			RowCount: t.RowCount(),
			Indexes:  t.IndexedColumns(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": infos})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/tables/")
	if name == "" || strings.Contains(name, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	columns, err := s.db.Describe(name)
	if err != nil {
		writeError(w, err)
		return
	}

	var rows []types.Row
	if r.URL.Query().Get("source") == "archive" {
		if s.persist == nil || s.persist.Archive() == nil {
			writeError(w, types.NewPersistenceError("no archive configured"))
			return
		}
		rows, err = s.persist.Archive().ReadTable(name, columns)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		res, execErr := s.db.ExecuteCommand("SELECT * FROM " + name)
		if execErr != nil {
			writeError(w, execErr)
			return
		}
		rows = res.Rows
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    name,
		"columns": columns,
		"rows":    rows,
	})
}
