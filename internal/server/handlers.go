package server

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"gamatrix/internal/config"
	"gamatrix/internal/gogdb"
	"gamatrix/internal/logging"
	"gamatrix/internal/reconcile"
)

// maxUploadBytes caps database uploads. Real Galaxy databases run tens to a
// few hundred MB.
const maxUploadBytes = 512 << 20

type userInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (s *Server) handleUsers(c *gin.Context) {
	users := make([]userInfo, 0, len(s.cfg.Users))
	for _, u := range s.cfg.Users {
		users = append(users, userInfo{ID: u.ID, Username: u.Username})
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type compareRequest struct {
	UserIDs             []int64  `json:"user_ids" binding:"required"`
	IncludeSinglePlayer bool     `json:"include_single_player"`
	InstalledOnly       bool     `json:"installed_only"`
	Exclusive           bool     `json:"exclusive"`
	AllGames            bool     `json:"all_games"`
	ExcludePlatforms    []string `json:"exclude_platforms"`
	KeepUnclassified    bool     `json:"keep_unclassified"`
}

func (s *Server) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := reconcile.Options{
		UserIDs:             req.UserIDs,
		IncludeSinglePlayer: req.IncludeSinglePlayer,
		InstalledOnly:       req.InstalledOnly,
		Exclusive:           req.Exclusive,
		AllGames:            req.AllGames,
		ExcludePlatforms:    req.ExcludePlatforms,
		KeepUnclassified:    req.KeepUnclassified,
	}

	// Exclusive mode scans everyone's library to find who else owns a title.
	scanIDs := req.UserIDs
	if req.Exclusive {
		scanIDs = make([]int64, 0, len(s.cfg.Users))
		for _, u := range s.cfg.Users {
			scanIDs = append(scanIDs, u.ID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	libs, closeLibs, err := s.openLibraries(c, scanIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeLibs()

	result, err := s.engine.Run(c.Request.Context(), opts, libs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.cache != nil {
		if err := s.cache.Save(); err != nil {
			s.logger.Error("save metadata cache", logging.Error(err))
		}
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) openLibraries(c *gin.Context, userIDs []int64) ([]reconcile.Library, func(), error) {
	var dbs []*gogdb.DB
	closeAll := func() {
		for _, db := range dbs {
			db.Close()
		}
	}

	libs := make([]reconcile.Library, 0, len(userIDs))
	for _, id := range userIDs {
		user, ok := s.cfg.UserByID(id)
		if !ok {
			closeAll()
			return nil, nil, fmt.Errorf("unknown user id %d", id)
		}
		db, err := gogdb.Open(c.Request.Context(), s.cfg.DBPath(user), s.logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		dbs = append(dbs, db)
		libs = append(libs, db)
	}
	return libs, closeAll, nil
}

func (s *Server) handleUpload(c *gin.Context) {
	user, ok := s.userForAddr(c.ClientIP())
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "no configured user for your address"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".db") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .db files are accepted"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !gogdb.IsSQLite(data) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not an SQLite database"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.cfg.DBPath(user)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, err := os.Stat(target); err == nil {
		if err := os.Rename(target, target+".bak"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("database uploaded",
		logging.Int64("user_id", user.ID),
		logging.String("path", target),
		logging.Int("bytes", len(data)))
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("database updated for %s", user.Username)})
}

// userForAddr resolves the uploading user from the caller's address via the
// per-user CIDR lists.
func (s *Server) userForAddr(addr string) (config.User, bool) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return config.User{}, false
	}
	for _, u := range s.cfg.Users {
		if ipInNetworks(ip, u.Networks) {
			return u, true
		}
	}
	return config.User{}, false
}
