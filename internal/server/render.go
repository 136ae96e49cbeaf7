package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/vyaparlabs/gstbill/internal/invoice/render"
	"github.com/vyaparlabs/gstbill/internal/providers/pdf"
)

// RenderInvoice returns the printable HTML rendition of a transaction.
func (s *Server) RenderInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	trx, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	html, err := s.renderer.RenderHTML(render.RenderInput{
		Transaction:   *trx,
		BusinessName:  s.cfg.BusinessName,
		BusinessGSTIN: s.cfg.BusinessGSTIN,
		FooterNote:    "This is a computer generated invoice.",
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordInvoiceRender(c.Request.Context(), "html")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// DownloadInvoicePDF streams the PDF rendition as an attachment named
// after the invoice number.
func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	trx, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.pdf.GenerateInvoice(c.Request.Context(), *trx, pdf.BusinessProfile{
		Name:    s.cfg.BusinessName,
		Address: s.cfg.BusinessAddress,
		GSTIN:   s.cfg.BusinessGSTIN,
		Email:   s.cfg.BusinessEmail,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordInvoiceRender(c.Request.Context(), "pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", trx.InvoiceNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", body)
}
