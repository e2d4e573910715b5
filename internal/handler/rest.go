package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"industry-console/internal/middleware"
	"industry-console/internal/model"
)

const maxBody = 1 << 20

// Routes mounts the REST API. Everything except /auth and /healthz needs a
// valid access token. rl, when non-nil, limits the login and register
// endpoints per client.
func (h *Handler) Routes(rl *middleware.RateLimiter) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /industry-cms/{industry}/settings", h.getSettings)
	api.HandleFunc("PUT /industry-cms/{industry}/settings", h.putSettings)
	api.HandleFunc("GET /appointments", h.listAppointments)
	api.HandleFunc("POST /appointments", h.createAppointment)
	api.HandleFunc("GET /appointments/{id}", h.getAppointment)
	api.HandleFunc("PATCH /appointments/{id}/status", h.updateStatus)
	api.HandleFunc("GET /staff-specialists", h.listStaff)
	api.HandleFunc("POST /staff-specialists", h.createStaff)
	api.HandleFunc("GET /services", h.listServices)
	api.HandleFunc("POST /services", h.createService)
	api.HandleFunc("POST /auth/logout", h.logout)

	limit := func(f http.HandlerFunc) http.Handler {
		if rl == nil {
			return f
		}
		return middleware.LimitHTTP(rl, f)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)
	mux.Handle("POST /auth/register", limit(h.register))
	mux.Handle("POST /auth/login", limit(h.login))
	mux.HandleFunc("POST /auth/refresh", h.refresh)
	mux.Handle("/", middleware.RequireAuth(h.secret, api))
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, map[string]any{"data": data})
}

var httpStatus = map[codes.Code]int{
	codes.InvalidArgument:   http.StatusBadRequest,
	codes.NotFound:          http.StatusNotFound,
	codes.AlreadyExists:     http.StatusConflict,
	codes.Unauthenticated:   http.StatusUnauthorized,
	codes.PermissionDenied:  http.StatusForbidden,
	codes.ResourceExhausted: http.StatusTooManyRequests,
}

func writeErr(w http.ResponseWriter, err error) {
	st, _ := status.FromError(err)
	code, ok := httpStatus[st.Code()]
	if !ok {
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, map[string]string{"error": st.Message()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v); err != nil {
		return status.Error(codes.InvalidArgument, "invalid JSON body")
	}
	return nil
}

func activeParam(r *http.Request) (*bool, error) {
	v := r.URL.Query().Get("is_active")
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "is_active must be a boolean")
	}
	return &b, nil
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database unavailable"})
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- cms -----

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := h.GetSettings(r.Context(), r.PathValue("industry"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, doc)
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeErr(w, status.Error(codes.InvalidArgument, "read body failed"))
		return
	}
	doc, err := h.SaveSettings(r.Context(), r.PathValue("industry"), body, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, json.RawMessage(doc))
}

// ----- appointments -----

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.AppointmentFilter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		StaffID:   q.Get("staff_id"),
		Status:    q.Get("status"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeErr(w, status.Error(codes.InvalidArgument, "limit must be a number"))
			return
		}
		f.Limit = n
	}
	apts, err := h.ListAppointments(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, apts)
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	apt, err := h.CreateAppointment(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, apt)
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	apt, err := h.GetAppointment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, apt)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var b struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &b); err != nil {
		writeErr(w, err)
		return
	}
	apt, err := h.UpdateAppointmentStatus(r.Context(), r.PathValue("id"), b.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, apt)
}

// ----- staff & services -----

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	active, err := activeParam(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	out, err := h.ListStaff(r.Context(), active)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	var b struct {
		model.Staff
		IsActive *bool `json:"is_active"`
	}
	if err := decodeBody(r, &b); err != nil {
		writeErr(w, err)
		return
	}
	b.Staff.IsActive = b.IsActive == nil || *b.IsActive
	st, err := h.CreateStaff(r.Context(), b.Staff)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, st)
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	active, err := activeParam(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	out, err := h.ListServices(r.Context(), active)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *Handler) createService(w http.ResponseWriter, r *http.Request) {
	var b struct {
		model.Service
		IsActive *bool `json:"is_active"`
	}
	if err := decodeBody(r, &b); err != nil {
		writeErr(w, err)
		return
	}
	b.Service.IsActive = b.IsActive == nil || *b.IsActive
	sv, err := h.CreateService(r.Context(), b.Service)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, sv)
}

// ----- auth -----

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func setSessionCookies(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name: "access_token", Value: s.Token, Path: "/",
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: "refresh_token", Value: s.RefreshToken, Path: "/auth/",
		Expires: s.RefreshExpires, HttpOnly: true, SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeBody(r, &c); err != nil {
		writeErr(w, err)
		return
	}
	s, err := h.Register(r.Context(), c.Email, c.Password, c.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	setSessionCookies(w, s)
	writeData(w, http.StatusCreated, s)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeBody(r, &c); err != nil {
		writeErr(w, err)
		return
	}
	s, err := h.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	setSessionCookies(w, s)
	writeData(w, http.StatusOK, s)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("refresh_token")
	if errors.Is(err, http.ErrNoCookie) {
		writeErr(w, status.Error(codes.Unauthenticated, "no refresh token"))
		return
	}
	s, err := h.Refresh(r.Context(), c.Value)
	if err != nil {
		writeErr(w, err)
		return
	}
	setSessionCookies(w, s)
	writeData(w, http.StatusOK, s)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Logout(r.Context(), middleware.UserID(r.Context())); err != nil {
		writeErr(w, err)
		return
	}
	for _, name := range []string{"access_token", "refresh_token"} {
		path := "/"
		if name == "refresh_token" {
			path = "/auth/"
		}
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: path, MaxAge: -1, HttpOnly: true})
	}
	writeData(w, http.StatusOK, map[string]bool{"logged_out": true})
}
