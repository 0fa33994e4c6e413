package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	geneuc "github.com/kailas-cloud/genedex/internal/usecase/gene"
)

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 1 << 20

func boolParam(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func intParam(params url.Values, name string) (int, error) {
	s := strings.TrimSpace(params.Get(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewInvalidInput(name, fmt.Sprintf("not an integer: %q", s))
	}
	return n, nil
}

func speciesParam(s string) (query.Species, error) {
	sp, err := query.ParseSpecies(s)
	if err != nil {
		return query.Species{}, domain.NewInvalidInput("species", err.Error())
	}
	return sp, nil
}

func lookupOptionsFromQuery(params url.Values) (geneuc.LookupOptions, error) {
	sp, err := speciesParam(params.Get("species"))
	if err != nil {
		return geneuc.LookupOptions{}, err
	}
	return geneuc.LookupOptions{
		Fields:  query.ParseFields(params.Get("fields")),
		Scope:   query.ParseScopes(params.Get("scopes")),
		Species: sp,
		Index:   params.Get("index"),
	}, nil
}

func searchOptionsFromQuery(params url.Values) (geneuc.SearchOptions, error) {
	var opts geneuc.SearchOptions

	sp, err := speciesParam(params.Get("species"))
	if err != nil {
		return opts, err
	}
	size, err := intParam(params, "size")
	if err != nil {
		return opts, err
	}
	from, err := intParam(params, "from")
	if err != nil {
		return opts, err
	}
	taxid, err := intParam(params, "taxid")
	if err != nil {
		return opts, err
	}
	mode, err := query.ParseMode(params.Get("mode"))
	if err != nil {
		return opts, domain.NewInvalidInput("mode", err.Error())
	}

	opts.Page = query.Options{
		Fields:  query.ParseFields(params.Get("fields")),
		From:    from,
		Size:    size,
		Sort:    query.ParseSort(params.Get("sort")),
		Explain: boolParam(params.Get("explain")),
		Version: boolParam(params.Get("version")),
		Species: sp,
	}
	opts.Mode = mode
	opts.TaxID = taxid
	opts.Index = params.Get("index")
	return opts, nil
}

// stringList accepts a JSON array of strings or one comma-separated string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("expected a string or a list of strings")
	}
	*l = splitList(s)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type batchRequest struct {
	IDs     stringList `json:"ids"`
	Fields  stringList `json:"fields"`
	Species string     `json:"species"`
	Scopes  stringList `json:"scopes"`
	Index   string     `json:"index"`
}

func (b batchRequest) lookupOptions() (geneuc.LookupOptions, error) {
	sp, err := speciesParam(b.Species)
	if err != nil {
		return geneuc.LookupOptions{}, err
	}
	return geneuc.LookupOptions{
		Fields:  query.ParseFields(strings.Join(b.Fields, ",")),
		Scope:   query.ScopeOf(b.Scopes...),
		Species: sp,
		Index:   b.Index,
	}, nil
}

// decodeBatchRequest reads a JSON body or form-encoded fields.
func decodeBatchRequest(w http.ResponseWriter, r *http.Request) (batchRequest, error) {
	var req batchRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.IDs = splitList(r.PostForm.Get("ids"))
	req.Fields = splitList(r.PostForm.Get("fields"))
	req.Species = r.PostForm.Get("species")
	req.Scopes = splitList(r.PostForm.Get("scopes"))
	req.Index = r.PostForm.Get("index")
	return req, nil
}
