package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbsmedya/fkorder/internal/graph"
	"github.com/dbsmedya/fkorder/internal/render"
	"github.com/dbsmedya/fkorder/internal/schema"
)

// SortRequest is the body of POST /api/v1/sort. Tables of the named set
// come first, followed by the listed tables.
type SortRequest struct {
	Tables []string `json:"tables"`
	Set    string   `json:"set"`
	Order  string   `json:"order"`
	Edges  bool     `json:"edges"`
}

// SetInfo describes one configured table set.
type SetInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tables      []string `json:"tables"`
}

func (s *Server) health(c *gin.Context) {
	if s.pinger != nil {
		if err := s.pinger.Ping(c.Request.Context()); err != nil {
			fail(c, http.StatusServiceUnavailable, err, "Database unreachable")
			return
		}
	}
	success(c, http.StatusOK, gin.H{"database": s.pinger != nil}, "ok")
}

func (s *Server) listSets(c *gin.Context) {
	sets := make([]SetInfo, 0, len(s.cfg.TableSets))
	for _, name := range s.cfg.ListTableSets() {
		set := s.cfg.TableSets[name]
		sets = append(sets, SetInfo{Name: name, Description: set.Description, Tables: set.Tables})
	}
	success(c, http.StatusOK, sets, "")
}

// sort handles POST /api/v1/sort. With ?format=mermaid the flowchart is
// returned as plain text.
func (s *Server) sort(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	order, err := graph.ParseOrder(req.Order)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid order")
		return
	}

	tables, err := s.cfg.ResolveTables(req.Set, req.Tables)
	if err != nil {
		fail(c, http.StatusNotFound, err, "Unknown table set")
		return
	}
	if len(tables) == 0 {
		fail(c, http.StatusBadRequest, nil, "No tables given")
		return
	}

	log := s.log.WithRequestID(c.GetString(requestIDKey))
	if req.Set != "" {
		log = log.WithSet(req.Set)
	}
	sorter := graph.NewSorter(s.src, graph.BuildOptions{
		DynamicPartitionSchema: s.cfg.Partitions.DynamicSchema,
	}, log)

	result, err := sorter.Sort(c.Request.Context(), tables)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, schema.ErrTableNotFound) {
			status = http.StatusUnprocessableEntity
		}
		fail(c, status, err, "Failed to sort tables")
		return
	}

	if c.Query("format") == string(render.FormatMermaid) {
		c.String(http.StatusOK, render.Mermaid(result))
		return
	}

	success(c, http.StatusOK, render.NewDocument(req.Set, result, order, req.Edges), "")
}
