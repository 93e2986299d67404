package api

import (
	"github.com/kraklabs/codeintel/internal/model"
)

// DefinitionLocation is one symbol-defining (or re-exporting) chunk,
// the shape GET /definitions/{symbol} returns.
type DefinitionLocation struct {
	Chunk          *model.Chunk `json:"chunk"`
	IsReexport     bool         `json:"is_reexport"`
	ReexportSource string       `json:"reexport_source,omitempty"`
}

// DefinitionsResponse answers GET /definitions/{symbol}.
type DefinitionsResponse struct {
	Definitions []DefinitionLocation `json:"definitions"`
}

// Definitions locates where a symbol is defined. args: symbol
// (required, passed as the path parameter by the caller), repo_url
// (required), branch (default "main"), include_reexports (default
// true), limit (default 20, max 200).
func (f *Facade) Definitions(symbol string, args map[string]interface{}) (*DefinitionsResponse, error) {
	if symbol == "" {
		return nil, errInvalid("symbol parameter is required")
	}
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}
	includeReexports := parseBoolArg(args, "include_reexports", true)
	limit := clampLimit(args, DefaultDefinitionsLimit, MaxDefinitionsLimit)

	defs, err := f.engine.Definitions(repoID, branch, symbol, includeReexports, limit)
	if err != nil {
		return nil, err
	}

	out := make([]DefinitionLocation, len(defs))
	for i, d := range defs {
		out[i] = DefinitionLocation{
			Chunk:          d.Chunk,
			IsReexport:     d.IsReexport,
			ReexportSource: d.ReexportSource,
		}
	}
	return &DefinitionsResponse{Definitions: out}, nil
}

// UsageLocation is one chunk using a symbol, the shape
// GET /usages/{symbol} returns.
type UsageLocation struct {
	Chunk     *model.Chunk `json:"chunk"`
	UsageType string       `json:"usage_type"`
	IsDynamic bool         `json:"is_dynamic"`
}

// UsagesResponse answers GET /usages/{symbol}.
type UsagesResponse struct {
	Usages []UsageLocation `json:"usages"`
}

// Usages locates every call/import/reference site for a symbol. args:
// symbol (required, passed as the path parameter by the caller),
// repo_url (required), branch (default "main"), limit (default 20,
// max 200).
func (f *Facade) Usages(symbol string, args map[string]interface{}) (*UsagesResponse, error) {
	if symbol == "" {
		return nil, errInvalid("symbol parameter is required")
	}
	repoID, branch, err := resolveRepo(args)
	if err != nil {
		return nil, err
	}
	limit := clampLimit(args, DefaultUsagesLimit, MaxUsagesLimit)

	usages, err := f.engine.Usages(repoID, branch, symbol, limit)
	if err != nil {
		return nil, err
	}

	out := make([]UsageLocation, len(usages))
	for i, u := range usages {
		out[i] = UsageLocation{
			Chunk:     u.Chunk,
			UsageType: string(u.UsageType),
			IsDynamic: u.IsDynamic,
		}
	}
	return &UsagesResponse{Usages: out}, nil
}
