package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/Bitfisherllc/roofdb/internal/data"
	"github.com/Bitfisherllc/roofdb/internal/literal"
	"github.com/Bitfisherllc/roofdb/options"
)

// Directory is the record store behind the HTTP handlers.
type Directory interface {
	Roofers(ctx context.Context, opts *options.FindOptions) ([]data.Roofer, error)
	Roofer(ctx context.Context, slug string) (data.Roofer, error)
	ApplyUpdates(ctx context.Context, updates []data.Update, version string) (literal.Report, error)
	Version(ctx context.Context) (string, error)
}

type RooferController struct {
	Dir Directory
	Log *zap.Logger
}

type adminRoofer struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Slug              string            `json:"slug"`
	Phone             string            `json:"phone,omitempty"`
	Email             string            `json:"email,omitempty"`
	WebsiteURL        string            `json:"websiteUrl,omitempty"`
	GoogleBusinessURL string            `json:"googleBusinessUrl,omitempty"`
	IsPreferred       bool              `json:"isPreferred"`
	IsHidden          bool              `json:"isHidden"`
	Category          string            `json:"category"`
	City              string            `json:"city,omitempty"`
	State             string            `json:"state,omitempty"`
	ServiceAreas      data.ServiceAreas `json:"serviceAreas"`
}

func toAdmin(r data.Roofer) adminRoofer {
	return adminRoofer{
		ID:                r.ID,
		Name:              r.Name,
		Slug:              r.Slug,
		Phone:             r.Phone,
		Email:             r.Email,
		WebsiteURL:        r.WebsiteURL,
		GoogleBusinessURL: r.GoogleBusinessURL,
		IsPreferred:       r.IsPreferred,
		IsHidden:          r.IsHidden,
		Category:          r.DisplayCategory(),
		City:              r.City,
		State:             r.State,
		ServiceAreas:      r.ServiceAreas,
	}
}

// AdminList returns every roofer, hidden ones included, in file order.
func (rc *RooferController) AdminList(c *gin.Context) {
	ctx := c.Request.Context()

	version, err := rc.Dir.Version(ctx)
	if err != nil {
		rc.fail(c, "Failed to load roofers", err)
		return
	}

	rs, err := rc.Dir.Roofers(ctx, options.Find().IncludeHidden().SetOrder(options.InFile))
	if err != nil {
		rc.fail(c, "Failed to load roofers", err)
		return
	}

	out := make([]adminRoofer, len(rs))
	for i := range rs {
		out[i] = toAdmin(rs[i])
	}

	c.Header("ETag", quoteETag(version))
	c.JSON(http.StatusOK, gin.H{"roofers": out})
}

// AdminUpdate applies a batch of roofer updates. An If-Match header must
// carry the version the client last read, or "*" for any version.
func (rc *RooferController) AdminUpdate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) || !gjson.GetBytes(body, "roofers").IsArray() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. Expected array of roofer updates."})
		return
	}

	var updates []data.Update
	if err := json.Unmarshal([]byte(gjson.GetBytes(body, "roofers").Raw), &updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body. Expected array of roofer updates.",
			"message": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	report, err := rc.Dir.ApplyUpdates(ctx, updates, unquoteETag(c.GetHeader("If-Match")))
	if err != nil {
		rc.fail(c, "Failed to update roofers", err)
		return
	}

	rc.log().Info("roofers updated",
		zap.Int("updates", len(updates)),
		zap.Int("applied", report.Applied),
		zap.Int("skipped", len(report.Skipped)),
	)

	if version, err := rc.Dir.Version(ctx); err == nil {
		c.Header("ETag", quoteETag(version))
	}

	skipped := report.Skipped
	if skipped == nil {
		skipped = []literal.Skip{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Roofers updated successfully",
		"skipped": skipped,
	})
}

// List is the public directory: visible roofers, optionally narrowed to a
// region, county or city.
func (rc *RooferController) List(c *gin.Context) {
	opts := options.Find().
		SetOrder(options.Directory).
		InArea(c.Query("region"), c.Query("county"), c.Query("city"))

	rs, err := rc.Dir.Roofers(c.Request.Context(), opts)
	if err != nil {
		rc.fail(c, "Failed to load roofers", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roofers": rs})
}

func (rc *RooferController) Get(c *gin.Context) {
	r, err := rc.Dir.Roofer(c.Request.Context(), c.Param("slug"))
	if err == nil && r.IsHidden {
		c.JSON(http.StatusNotFound, gin.H{"error": "Roofer not found"})
		return
	}

	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Roofer not found"})
			return
		}

		rc.fail(c, "Failed to load roofer", err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// ListingTypes maps the id of every visible roofer to its listing type.
func (rc *RooferController) ListingTypes(c *gin.Context) {
	rs, err := rc.Dir.Roofers(c.Request.Context(), options.Find().SetOrder(options.InFile))
	if err != nil {
		rc.fail(c, "Failed to load listing types", err)
		return
	}

	types := make(map[string]data.ListingType, len(rs))
	for _, r := range rs {
		types[r.ID] = data.ListingTypeOf(r)
	}

	c.JSON(http.StatusOK, types)
}

func (rc *RooferController) Health(c *gin.Context) {
	version, err := rc.Dir.Version(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
}

func (rc *RooferController) fail(c *gin.Context, msg string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		rc.log().Error(msg, zap.Error(err))
	} else {
		rc.log().Warn(msg, zap.Error(err))
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg, "message": err.Error()})
}

func (rc *RooferController) log() *zap.Logger {
	if rc.Log == nil {
		return zap.NewNop()
	}
	return rc.Log
}

func quoteETag(v string) string {
	return `"` + v + `"`
}

// unquoteETag returns the version named by an If-Match value. An empty
// result, also given for "*", matches any version.
func unquoteETag(v string) string {
	v = strings.TrimSpace(v)
	if v == "*" {
		return ""
	}
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
