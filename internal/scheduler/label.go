package scheduler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"shipgate/internal/backend"
)

// Label is a usable shipping-label payload: either the PDF bytes or a URL
// the backend already hosts.
type Label struct {
	PDF []byte
	URL string
}

type labelJSON struct {
	LabelURL  string `json:"labelUrl"`
	PDFBase64 string `json:"pdfBase64"`
	Message   string `json:"message"`
}

// FetchLabel retrieves the label for an order. A label URL already known to
// the cache wins outright. Otherwise the fallback chain is walked in order
// — refresh from upstream, direct fetch, legacy generate — and the first
// endpoint returning a usable payload (PDF binary, labelUrl JSON, or
// base64-encoded PDF) ends the walk. If every endpoint fails, the last
// observed error is surfaced.
func (o *Orchestrator) FetchLabel(ctx context.Context, orderID string) (*Label, error) {
	if order, ok := o.orders.Get(orderID); ok && order.LabelURL != "" {
		return &Label{URL: order.LabelURL}, nil
	}

	var lastErr error
	for _, ep := range backend.LabelEndpoints {
		resp, err := o.backend.FetchLabelRaw(ctx, ep, orderID)
		if err != nil {
			lastErr = err
			continue
		}
		if !resp.OK() {
			lastErr = fmt.Errorf("%s: %s", ep.Name, resp.Message())
			continue
		}

		if strings.Contains(resp.ContentType, "application/pdf") {
			return &Label{PDF: resp.Body}, nil
		}

		var payload labelJSON
		if err := resp.JSON(&payload); err != nil {
			lastErr = fmt.Errorf("%s: %w", ep.Name, err)
			continue
		}
		if payload.LabelURL != "" {
			o.orders.SetLabelURL(orderID, payload.LabelURL)
			return &Label{URL: payload.LabelURL}, nil
		}
		if payload.PDFBase64 != "" {
			pdf, err := base64.StdEncoding.DecodeString(payload.PDFBase64)
			if err != nil {
				lastErr = fmt.Errorf("%s: decode pdf: %w", ep.Name, err)
				continue
			}
			return &Label{PDF: pdf}, nil
		}
		if payload.Message != "" {
			lastErr = fmt.Errorf("%s: %s", ep.Name, payload.Message)
		} else {
			lastErr = fmt.Errorf("%s: no usable label payload", ep.Name)
		}
	}

	if lastErr == nil {
		lastErr = errors.New("failed to generate label")
	}
	return nil, lastErr
}
