package service

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go-linkstats/internal/biz"
	"go-linkstats/pkg/apiresponse"

	"github.com/go-chi/chi/v5"
	"github.com/go-kratos/kratos/v2/errors"
)

var errInvalidBody = errors.BadRequest(biz.ReasonValidationFailed, "request body must be valid JSON")

// CreateLinkRequest is the body of POST /links.
type CreateLinkRequest struct {
	OriginURL string `json:"originUrl"`
	Key       string `json:"key"`
}

// Redirect handles GET /{key}.
func (s *LinkService) Redirect(w http.ResponseWriter, r *http.Request) {
	originURL, err := s.redirector.Handle(r.Context(), biz.RedirectRequest{
		Key:       chi.URLParam(r, "key"),
		UserAgent: r.UserAgent(),
		ClientIP:  clientIP(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, originURL, http.StatusFound)
}

// CreateLink handles POST /links.
func (s *LinkService) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errInvalidBody)
		return
	}

	link, err := s.links.Create(r.Context(), biz.CreateLinkInput{
		OwnerID:   OwnerFromContext(r.Context()),
		OriginURL: req.OriginURL,
		Key:       req.Key,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	apiresponse.New(http.StatusOK, "link created", s.toLinkResponse(link)).Write(w)
}

// ListLinks handles GET /links.
func (s *LinkService) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.links.List(r.Context(), OwnerFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := ListLinksResponse{Links: make([]LinkResponse, 0, len(links))}
	for _, l := range links {
		resp.Links = append(resp.Links, s.toLinkResponse(l))
	}
	apiresponse.New(http.StatusOK, "links fetched", resp).Write(w)
}

// GetStats handles GET /links/{key}/stats.
func (s *LinkService) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.GetStats(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	apiresponse.New(http.StatusOK, "stats fetched", GetStatsResponse{Stats: s.toStatsResponse(stats)}).Write(w)
}

// DeleteLink handles DELETE /links/{id}.
func (s *LinkService) DeleteLink(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		s.writeError(w, r, biz.ErrLinkIDRequired)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, errors.BadRequest(biz.ReasonValidationFailed, "id must be a positive integer"))
		return
	}

	if err := s.links.Delete(r.Context(), OwnerFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	apiresponse.New(http.StatusOK, "link deleted", DeleteLinkResponse{ID: id}).Write(w)
}

// Healthz handles GET /healthz.
func (s *LinkService) Healthz(w http.ResponseWriter, _ *http.Request) {
	apiresponse.New(http.StatusOK, "healthy", HealthResponse{Status: "ok"}).Write(w)
}

// clientIP strips the port from RemoteAddr, which RealIP has already
// replaced with the forwarded address when one was sent.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
