package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListDatasets(c *gin.Context) {
	if s == nil || s.registry == nil {
		respondError(c, http.StatusInternalServerError, errors.New("adapter registry not configured"))
		return
	}

	names := s.registry.Names()
	out := make([]gin.H, 0, len(names))
	for _, name := range names {
		a, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		info := a.Info()
		out = append(out, gin.H{
			"name":        info.Name,
			"pretty_name": info.PrettyName,
			"tags":        info.Tags,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetDataset(c *gin.Context) {
	if s == nil || s.registry == nil {
		respondError(c, http.StatusInternalServerError, errors.New("adapter registry not configured"))
		return
	}

	name := strings.TrimSpace(c.Param("name"))
	a, ok := s.registry.Get(name)
	if !ok {
		respondError(c, http.StatusNotFound, errors.New("unknown dataset"))
		return
	}
	c.JSON(http.StatusOK, a.Info())
}

func (s *Server) handleGetLeaderboard(c *gin.Context) {
	if s == nil || s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	dataset := strings.TrimSpace(c.Query("dataset"))
	if dataset == "" {
		respondError(c, http.StatusBadRequest, errors.New("dataset is required"))
		return
	}

	limit := 20
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	entries, err := s.lbStore.GetLeaderboard(c.Request.Context(), dataset, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleGetModelHistory(c *gin.Context) {
	if s == nil || s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	model := strings.TrimSpace(c.Query("model"))
	dataset := strings.TrimSpace(c.Query("dataset"))
	if model == "" || dataset == "" {
		respondError(c, http.StatusBadRequest, errors.New("model and dataset are required"))
		return
	}

	entries, err := s.lbStore.GetModelHistory(c.Request.Context(), model, dataset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
