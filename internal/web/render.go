package web

import (
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/desertthunder/genify/internal/formatter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type suggestion struct {
	formatter.RecommendationEntry
	QRCode template.URL
}

type resultPage struct {
	Title       string
	Input       string
	Report      *formatter.Report
	Suggestions []suggestion
	Error       string
}

var templateFuncs = template.FuncMap{
	"target": formatter.FormatTarget,
	"share": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v*100)
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"score": func(v float64) string {
		return fmt.Sprintf("%.3f", v)
	},
}

// qrDataURI encodes content as a PNG QR code inlined in a data URI.
func qrDataURI(content string) (template.URL, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

func (a *App) suggestions(recs []formatter.RecommendationEntry) []suggestion {
	out := make([]suggestion, 0, len(recs))
	for _, rec := range recs {
		s := suggestion{RecommendationEntry: rec}
		if a.qrCodes && rec.URL != "" {
			uri, err := qrDataURI(rec.URL)
			if err != nil {
				a.logger.Warn("failed to encode QR code", "track", rec.ID, "error", err)
			} else {
				s.QRCode = uri
			}
		}
		out = append(out, s)
	}
	return out
}
