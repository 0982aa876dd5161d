// Request decoding: JSON bodies, filter query parameters, pagination.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"granaia/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// parseDate accepts a bare date or a full timestamp. Bare dates land
// on midnight UTC so boundary comparisons stay inclusive.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t.UTC(), nil
}

// rawAmount defers decimal parsing so the handler can answer with a
// field-level validation error instead of a generic decode failure.
// Accepts both JSON numbers and quoted decimal strings.
type rawAmount json.RawMessage

func (a *rawAmount) UnmarshalJSON(b []byte) error {
	*a = append((*a)[:0], b...)
	return nil
}

func (a rawAmount) present() bool {
	return len(a) > 0 && string(a) != "null"
}

func (a rawAmount) cents() (int64, error) {
	s := strings.TrimSpace(string(a))
	s = strings.Trim(s, `"`)
	return core.ParseDecimalToCents(s)
}

type createUserRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	RemoteJID string `json:"remotejid"`
}

type updateUserRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	LastMessage *string `json:"last_message"`
}

type premiumRequest struct {
	PremiumUntil *time.Time `json:"premium_until"`
	TipoPremium  *string    `json:"tipo_premium"`
}

type lastMessageRequest struct {
	LastMessage string `json:"last_message"`
}

type createRecordRequest struct {
	Usuario   string    `json:"usuario"`
	Descricao string    `json:"descricao"`
	Valor     rawAmount `json:"valor"`
	Categoria string    `json:"categoria"`
	Data      *string   `json:"data"`
}

type updateRecordRequest struct {
	Descricao *string   `json:"descricao"`
	Valor     rawAmount `json:"valor"`
	Categoria *string   `json:"categoria"`
	Data      *string   `json:"data"`
}

// parsePage reads page/page_size, treating garbage like absence. Out
// of range values are clamped by core.NewPage.
func parsePage(query url.Values) core.Page {
	page := 1
	size := core.DefaultPageSize

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	if v := strings.TrimSpace(query.Get("page_size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			size = n
		}
	}

	return core.NewPage(page, size)
}

// parseUserFilter builds the user listing filter from query params.
func parseUserFilter(query url.Values) (core.UserFilter, error) {
	var f core.UserFilter

	if v := strings.TrimSpace(query.Get("name")); v != "" {
		f.Name = &v
	}
	if v := strings.TrimSpace(query.Get("phone")); v != "" {
		f.Phone = &v
	}
	if v := strings.TrimSpace(query.Get("premium_active")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid premium_active %q", v)
		}
		f.PremiumActive = &b
	}
	if v := strings.TrimSpace(query.Get("premium_expired")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid premium_expired %q", v)
		}
		f.PremiumExpired = &b
	}

	return f, nil
}

// parseRecordFilter builds the expense/income filter from query params.
func parseRecordFilter(query url.Values) (core.RecordFilter, error) {
	var f core.RecordFilter

	if v := strings.TrimSpace(query.Get("usuario_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("invalid usuario_id %q", v)
		}
		f.UserID = &id
	}
	if v := strings.TrimSpace(query.Get("categoria")); v != "" {
		f.Category = &v
	}
	if v := strings.TrimSpace(query.Get("data_inicio")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid data_inicio: %w", err)
		}
		f.DateFrom = &t
	}
	if v := strings.TrimSpace(query.Get("data_fim")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid data_fim: %w", err)
		}
		f.DateTo = &t
	}
	if v := strings.TrimSpace(query.Get("valor_min")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return f, fmt.Errorf("invalid valor_min: %w", err)
		}
		f.AmountMinCents = &cents
	}
	if v := strings.TrimSpace(query.Get("valor_max")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return f, fmt.Errorf("invalid valor_max: %w", err)
		}
		f.AmountMaxCents = &cents
	}

	return f, nil
}

// parseDashboardFilter reads the aggregation scope: owning user plus
// an optional inclusive date range.
func parseDashboardFilter(query url.Values) (core.RecordFilter, error) {
	var f core.RecordFilter

	if v := strings.TrimSpace(query.Get("usuario_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("invalid usuario_id %q", v)
		}
		f.UserID = &id
	}
	if v := strings.TrimSpace(query.Get("data_inicio")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid data_inicio: %w", err)
		}
		f.DateFrom = &t
	}
	if v := strings.TrimSpace(query.Get("data_fim")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid data_fim: %w", err)
		}
		f.DateTo = &t
	}

	return f, nil
}

// pathID extracts and validates the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
