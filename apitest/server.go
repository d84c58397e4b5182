// Package apitest runs an in-process fake of the external caravan API for
// tests. It keeps its own users, sessions and reservations and records every
// request it serves.
package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"caravan-share/models"

	"github.com/gin-gonic/gin"
)

// CookieName is the authentication cookie the fake backend sets.
const CookieName = "access_token"

// LogoutPath is served only when Options.WithLogout is set.
const LogoutPath = "/api/auth/logout"

type Options struct {
	// WithLogout serves POST /api/auth/logout.
	WithLogout bool
	// FailFacilities makes the points-of-interest endpoint answer 500.
	FailFacilities bool
	// FailListings makes GET /api/caravans (the collection) answer 500.
	FailListings bool
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	opts Options

	mu           sync.Mutex
	caravans     map[int64]models.Listing
	order        []int64
	facilities   map[string][]models.PointOfInterest
	accounts     map[string]Account
	sessions     map[string]int64
	reservations []reservationRow
	nextResID    int64
	requests     []string
}

type reservationRow struct {
	userID int64
	record models.ReservationRecord
}

// NewServer starts a fake backend seeded with the fixtures.
func NewServer(opts Options) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		opts:       opts,
		caravans:   make(map[int64]models.Listing),
		facilities: Facilities(),
		accounts:   make(map[string]Account),
		sessions:   make(map[string]int64),
		nextResID:  1000,
	}
	for _, c := range Caravans() {
		s.caravans[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	for _, a := range Accounts() {
		s.accounts[strings.ToLower(a.Identity.Email)] = a
	}

	s.Server = httptest.NewServer(s.router())
	return s
}

// Requests returns "METHOD /path" for every request served, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests hit method and path.
func (s *Server) Count(method, path string) int {
	want := method + " " + path
	n := 0
	for _, r := range s.Requests() {
		if r == want {
			n++
		}
	}
	return n
}

// SetFailFacilities toggles the points-of-interest failure at runtime.
func (s *Server) SetFailFacilities(fail bool) {
	s.mu.Lock()
	s.opts.FailFacilities = fail
	s.mu.Unlock()
}

// ActiveSessions returns how many login cookies are still valid.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		s.mu.Lock()
		s.requests = append(s.requests, c.Request.Method+" "+c.Request.URL.Path)
		s.mu.Unlock()
		c.Next()
	})

	r.GET("/api/users/me", s.me)
	r.GET("/api/users/me/reservations", s.myReservations)
	r.POST("/api/auth/token", s.token)
	r.GET("/api/auth/url/google", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"url": "https://accounts.google.com/o/oauth2/v2/auth?client_id=test&response_type=code&scope=openid%20profile%20email"})
	})
	if s.opts.WithLogout {
		r.POST(LogoutPath, s.logout)
	}
	r.GET("/api/caravans", s.listCaravans)
	r.GET("/api/caravans/:id", s.getCaravan)
	r.GET("/api/points-of-interest", s.pois)
	r.POST("/api/reservations", s.createReservation)
	return r
}

func detail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"detail": msg})
}

func (s *Server) currentUser(c *gin.Context) (Account, bool) {
	token, err := c.Cookie(CookieName)
	if err != nil {
		return Account{}, false
	}
	token = strings.TrimPrefix(token, "Bearer ")

	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.sessions[token]
	if !ok {
		return Account{}, false
	}
	for _, a := range s.accounts {
		if a.Identity.UserID == uid {
			return a, true
		}
	}
	return Account{}, false
}

func (s *Server) me(c *gin.Context) {
	acct, ok := s.currentUser(c)
	if !ok {
		detail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, acct.Identity)
}

func (s *Server) token(c *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(c.PostForm("username")))
	password := c.PostForm("password")

	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok || acct.Password != password {
		detail(c, http.StatusUnauthorized, "Incorrect credentials")
		return
	}

	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.sessions[token] = acct.Identity.UserID
	s.mu.Unlock()

	c.SetCookie(CookieName, token, 3600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(CookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) listCaravans(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.FailListings {
		detail(c, http.StatusInternalServerError, "listing store unavailable")
		return
	}
	out := make([]models.Listing, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.caravans[id])
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getCaravan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusNotFound, "Caravan not found")
		return
	}
	s.mu.Lock()
	caravan, ok := s.caravans[id]
	s.mu.Unlock()
	if !ok {
		detail(c, http.StatusNotFound, "Caravan not found")
		return
	}
	c.JSON(http.StatusOK, caravan)
}

func (s *Server) pois(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.FailFacilities {
		detail(c, http.StatusInternalServerError, "facility provider unavailable")
		return
	}
	out := s.facilities[c.Query("location")]
	if out == nil {
		out = []models.PointOfInterest{}
	}
	c.JSON(http.StatusOK, out)
}

type createReservationBody struct {
	CaravanID int64       `json:"caravan_id"`
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
}

func (s *Server) createReservation(c *gin.Context) {
	acct, ok := s.currentUser(c)
	if !ok {
		detail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var body createReservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid reservation payload")
		return
	}
	if !body.StartDate.Before(body.EndDate) {
		detail(c, http.StatusBadRequest, "Start date must be before end date.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	caravan, ok := s.caravans[body.CaravanID]
	if !ok {
		detail(c, http.StatusNotFound, "Caravan not found")
		return
	}
	for _, row := range s.reservations {
		r := row.record
		if r.CaravanID == body.CaravanID && r.Status != models.ReservationCancelled &&
			body.StartDate.Before(r.EndDate) && r.StartDate.Before(body.EndDate) {
			detail(c, http.StatusConflict, "Caravan is not available for the selected dates.")
			return
		}
	}

	days := body.EndDate.Sub(body.StartDate.Time) / (24 * time.Hour)
	s.nextResID++
	record := models.ReservationRecord{
		ID:         s.nextResID,
		CaravanID:  body.CaravanID,
		StartDate:  body.StartDate,
		EndDate:    body.EndDate,
		TotalPrice: float64(days) * caravan.PricePerDay,
		Status:     models.ReservationPending,
	}
	s.reservations = append(s.reservations, reservationRow{userID: acct.Identity.UserID, record: record})
	c.JSON(http.StatusCreated, record)
}

func (s *Server) myReservations(c *gin.Context) {
	acct, ok := s.currentUser(c)
	if !ok {
		detail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ReservationDetails{}
	for _, row := range s.reservations {
		if row.userID != acct.Identity.UserID {
			continue
		}
		caravan := s.caravans[row.record.CaravanID]
		out = append(out, models.ReservationDetails{
			ID:              row.record.ID,
			StartDate:       row.record.StartDate,
			EndDate:         row.record.EndDate,
			TotalPrice:      row.record.TotalPrice,
			Status:          row.record.Status,
			CaravanName:     caravan.Name,
			CaravanImageURL: caravan.ImageURL,
		})
	}
	c.JSON(http.StatusOK, out)
}
