package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gstrecon/internal/csvexport"
	"gstrecon/internal/service"
	"gstrecon/internal/xlsxreport"
)

// ExportHandler serves the reconciliation result as a downloadable file.
type ExportHandler struct {
	svc service.ReconService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc service.ReconService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export handles GET /sessions/:id/export?format=csv|xlsx (default csv).
func (h *ExportHandler) Export(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	sess, err := h.svc.GetSession(id)
	if err != nil {
		HandleError(c, err)
		return
	}
	result, err := h.svc.Result(id)
	if err != nil {
		HandleError(c, err)
		return
	}

	switch format {
	case "xlsx":
		var buf bytes.Buffer
		if err := xlsxreport.Write(&buf, sess.ClientName, sess.Period, result); err != nil {
			HandleError(c, err)
			return
		}
		filename := strings.TrimSuffix(csvexport.BuildFilename(sess.ClientName), ".csv") + ".xlsx"
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		var buf bytes.Buffer
		buf.Write(csvexport.BOM)
		w := csvexport.NewWriter(&buf)
		if err := w.WriteHeader(); err != nil {
			HandleError(c, err)
			return
		}
		if err := w.WriteDiscrepancies(result.Discrepancies); err != nil {
			HandleError(c, err)
			return
		}
		w.Flush()
		if err := w.Error(); err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, csvexport.BuildFilename(sess.ClientName)))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}
