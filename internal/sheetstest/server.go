// Package sheetstest runs an in-memory sheets API for tests.
package sheetstest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// Server is a fake sheets API backed by in-memory tabs.
type Server struct {
	URL string

	mu     sync.Mutex
	tabs   map[string][][]any
	fail   map[string]int
	bare   bool
	writes int
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{tabs: make(map[string][][]any), fail: make(map[string]int)}
	r := gin.New()
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api := r.Group("/api/v1/sheets/:sheet", s.failures)
	api.GET("", s.values)
	api.GET("/range/:range", s.values)
	api.POST("/append", s.append)
	api.PUT("/range/:range", s.update)
	api.DELETE("/clear", s.clear)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// Seed replaces a tab's contents. The first row is the header.
func (s *Server) Seed(sheet string, rows ...[]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[sheet] = append([][]any(nil), rows...)
}

// Rows returns a copy of a tab's contents, header included.
func (s *Server) Rows(sheet string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.tabs[sheet]...)
}

// Fail makes every request for sheet answer with status. Zero clears it.
func (s *Server) Fail(sheet string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, sheet)
		return
	}
	s.fail[sheet] = status
}

// Bare switches reads to the unwrapped {"values": ...} shape.
func (s *Server) Bare(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bare = on
}

// Writes counts successful append, update and clear calls.
func (s *Server) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Server) failures(c *gin.Context) {
	s.mu.Lock()
	status := s.fail[c.Param("sheet")]
	s.mu.Unlock()
	if status != 0 {
		c.AbortWithStatusJSON(status, gin.H{"success": false, "error": http.StatusText(status)})
		return
	}
	c.Next()
}

func (s *Server) values(c *gin.Context) {
	s.mu.Lock()
	rows, ok := s.tabs[c.Param("sheet")]
	bare := s.bare
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "sheet not found"})
		return
	}
	if rows == nil {
		rows = [][]any{}
	}
	if bare {
		c.JSON(http.StatusOK, gin.H{"values": rows})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"values": rows}})
}

type valuesBody struct {
	Values [][]any `json:"values"`
}

func (s *Server) append(c *gin.Context) {
	var body valuesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	s.mu.Lock()
	sheet := c.Param("sheet")
	s.tabs[sheet] = append(s.tabs[sheet], body.Values...)
	s.writes++
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"updatedRows": len(body.Values)}})
}

// update writes rows starting at the first row number found in the A1 range.
func (s *Server) update(c *gin.Context) {
	var body valuesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	start := startRow(c.Param("range"))
	s.mu.Lock()
	sheet := c.Param("sheet")
	tab := s.tabs[sheet]
	for i, row := range body.Values {
		idx := start - 1 + i
		for len(tab) <= idx {
			tab = append(tab, []any{})
		}
		tab[idx] = row
	}
	s.tabs[sheet] = tab
	s.writes++
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) clear(c *gin.Context) {
	s.mu.Lock()
	s.tabs[c.Param("sheet")] = nil
	s.writes++
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func startRow(rng string) int {
	if i := strings.IndexByte(rng, '!'); i >= 0 {
		rng = rng[i+1:]
	}
	rng = strings.TrimLeft(rng, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")
	end := strings.IndexFunc(rng, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		rng = rng[:end]
	}
	n, err := strconv.Atoi(rng)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
