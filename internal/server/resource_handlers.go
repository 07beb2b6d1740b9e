package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/minimalprod/erpctl/internal/erp"
	"github.com/minimalprod/erpctl/internal/models"
)

func (s *Server) loadRecord(c *gin.Context, recPath string) (*models.Record, bool) {
	rec, err := models.FindRecord(s.db, recPath)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Str("path", recPath).Msg("Failed to load record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return rec, true
}

// getRecord serves the seeded document at recPath as is
func (s *Server) getRecord(recPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := s.loadRecord(c, recPath)
		if !ok {
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(rec.Body))
	}
}

// getRecordItem serves the collection item whose id matches :id. Numeric
// and string ids compare by their text.
func (s *Server) getRecordItem(recPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := s.loadRecord(c, recPath)
		if !ok {
			return
		}

		items, _ := collectionItems(rec.Body)
		id := c.Param("id")
		for _, item := range items {
			if fmt.Sprint(item["id"]) == id {
				c.JSON(http.StatusOK, item)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	}
}

// depreciationChart computes the straight-line depreciation of a machine.
// Years up to the current one are "Real", later ones "Proyectado".
func (s *Server) depreciationChart(c *gin.Context) {
	rec, ok := s.loadRecord(c, "/api/maquinas")
	if !ok {
		return
	}

	var machines []erp.Machine
	if err := json.Unmarshal([]byte(rec.Body), &machines); err != nil {
		s.logger.Error().Err(err).Msg("Invalid machines record")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	id := c.Param("id")
	for _, m := range machines {
		if m.ID != id {
			continue
		}
		points, err := depreciationCurve(m, s.now())
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, points)
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
}

func depreciationCurve(m erp.Machine, now time.Time) ([]erp.DepreciationPoint, error) {
	points := []erp.DepreciationPoint{}
	if m.UsefulLifeYears <= 0 {
		return points, nil
	}

	purchased, err := time.Parse(time.DateOnly, m.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase date %q", m.PurchaseDate)
	}

	salvage := 0.0
	if m.SalvageValue != nil {
		salvage = *m.SalvageValue
	}
	annual := (m.PurchaseCost - salvage) / float64(m.UsefulLifeYears)

	for i := 0; i <= m.UsefulLifeYears; i++ {
		year := purchased.Year() + i
		kind := erp.DepreciationActual
		if year > now.Year() {
			kind = erp.DepreciationProjected
		}

		yearly := annual
		if i == 0 {
			yearly = 0
		}
		accumulated := annual * float64(i)

		points = append(points, erp.DepreciationPoint{
			Year:              year,
			Date:              fmt.Sprintf("%d-12-31", year),
			BookValue:         round2(m.PurchaseCost - accumulated),
			DepreciationValue: round2(yearly),
			AccumulatedValue:  round2(accumulated),
			Kind:              kind,
		})
	}
	return points, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

const (
	formatPDF   = "pdf"
	formatExcel = "excel"
)

// exportRecord renders a report collection as a download
func (s *Server) exportRecord(recPath, format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := s.loadRecord(c, recPath)
		if !ok {
			return
		}
		items, _ := collectionItems(rec.Body)
		name := path.Base(recPath)

		var (
			data        []byte
			contentType string
			filename    string
			err         error
		)
		switch format {
		case formatPDF:
			data = renderPDF(name, items)
			contentType = "application/pdf"
			filename = name + ".pdf"
		default:
			data, err = renderCSV(items)
			contentType = "text/csv; charset=utf-8"
			filename = name + ".csv"
		}
		if err != nil {
			s.logger.Error().Err(err).Str("path", recPath).Msg("Failed to render export")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render export"})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, contentType, data)
	}
}

// GraphQLRequest is the body of POST /graphql
type GraphQLRequest struct {
	Query     string         `json:"query" validate:"required"`
	Variables map[string]any `json:"variables"`
}

// graphql echoes the query and variables back under "data". Invalid
// requests are reported in the GraphQL "errors" array.
func (s *Server) graphql(c *gin.Context) {
	var req GraphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": err.Error()}}})
		return
	}

	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusOK, gin.H{"errors": []gin.H{{"message": "query is required"}}})
		return
	}

	sessionData, _ := GetSessionData(c)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"query":     req.Query,
			"variables": req.Variables,
			"viewer":    sessionData.Username,
		},
	})
}
