// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Bantay analytics for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/api"
	"github.com/starford/bantay/internal/apperr"
	"github.com/starford/bantay/internal/dashboard"
	"github.com/starford/bantay/internal/models"
	"github.com/starford/bantay/internal/storage"
)

const (
	uriRecordFormat = "bantay://record-format"
	uriVocabulary   = "bantay://vocabulary"
)

// filterArgs are the criteria arguments shared by every analysis tool.
var filterArgs = []string{
	"window", "month", "year", "status", "category", "zone",
	"gender", "employment", "priority", "age", "age_mode", "age_min",
}

// Server wraps the MCP server with Bantay tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	svc   *dashboard.Service
}

// New creates a new MCP server with all Bantay tools registered.
func New(store storage.Provider, svc *dashboard.Service) *Server {
	s := &Server{store: store, svc: svc}

	s.mcp = server.NewMCPServer(
		"Bantay",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(analysisTool("breakdown",
		"Count filtered records per label of one dimension. Fixed vocabularies list every label, "+
			"missing values are counted under Unknown.",
		mcp.WithString("dimension", mcp.Required(), mcp.Description("status, category, zone, gender, employment, weekday, month, year, age or subject")),
	), s.breakdown)

	s.mcp.AddTool(analysisTool("top_ranked",
		"Rank the most frequent labels of one dimension (e.g. most requested documents, busiest zones).",
		mcp.WithString("dimension", mcp.Required(), mcp.Description("Dimension to rank")),
		mcp.WithNumber("n", mcp.Description("Number of entries (default from config)")),
		mcp.WithNumber("within_days", mcp.Description("Only rank records from the last N days (0 ranks the whole filtered set)")),
	), s.topRanked)

	s.mcp.AddTool(analysisTool("monthly_series",
		"Monthly counts as a fixed January-December template per year.",
		mcp.WithString("years", mcp.Description("Comma separated years, e.g. 2024,2025 (default: current year)")),
	), s.monthlySeries)

	s.mcp.AddTool(analysisTool("forecast_demand",
		"Forecast next month's demand from the monthly history. Reports why no forecast "+
			"was made when history is too short.",
	), s.forecastDemand)

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List record files, optionally inside one folder (requests or cases)."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("read_record",
		mcp.WithDescription("Read the raw YAML of one record file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the record (e.g. requests/0001.yaml)")),
	), s.readRecord)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the record file format and the filter argument conventions."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource(uriRecordFormat, "Record Format",
			mcp.WithResourceDescription("YAML record file format and status resolution rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)
	s.mcp.AddResource(
		mcp.NewResource(uriVocabulary, "Vocabulary",
			mcp.WithResourceDescription("Kinds, dimensions, zones, categories and statuses."),
			mcp.WithMIMEType("application/json"),
		),
		s.readVocabularyResource,
	)

	return s
}

// analysisTool builds a tool that takes a kind plus the shared filters.
func analysisTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	all := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("kind", mcp.Required(), mcp.Description("request or case")),
		mcp.WithString("window", mcp.Description("today, this_week, this_month, this_year or custom")),
		mcp.WithString("month", mcp.Description("Month number or name (implies window=custom)")),
		mcp.WithNumber("year", mcp.Description("Calendar year (implies window=custom)")),
		mcp.WithString("status", mcp.Description("Effective status")),
		mcp.WithString("category", mcp.Description("Document type or case nature, exact match")),
		mcp.WithString("zone", mcp.Description("Zone, e.g. Purok 3")),
		mcp.WithString("gender", mcp.Description("Gender")),
		mcp.WithString("employment", mcp.Description("Employment status")),
		mcp.WithString("priority", mcp.Description("pwd, four_ps or solo_parent")),
		mcp.WithNumber("age", mcp.Description("Age value")),
		mcp.WithString("age_mode", mcp.Description("exact (default) or at_least")),
	}
	return mcp.NewTool(name, append(all, opts...)...)
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func kindArg(req mcp.CallToolRequest) (models.Kind, error) {
	raw, err := req.RequireString("kind")
	if err != nil {
		return "", err
	}
	k := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "s")
	return models.Kind(k), nil
}

// criteriaArgs reads the shared filter arguments through the same parser
// the HTTP query string uses.
func criteriaArgs(req mcp.CallToolRequest) (analytics.Criteria, error) {
	args := req.GetArguments()
	q := url.Values{}
	for _, key := range filterArgs {
		switch v := args[key].(type) {
		case string:
			if v != "" {
				q.Set(key, v)
			}
		case float64:
			q.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case int:
			q.Set(key, strconv.Itoa(v))
		}
	}
	return api.ParseCriteria(q)
}

func analysisArgs(req mcp.CallToolRequest) (models.Kind, analytics.Criteria, error) {
	kind, err := kindArg(req)
	if err != nil {
		return "", analytics.Criteria{}, err
	}
	c, err := criteriaArgs(req)
	if err != nil {
		return "", analytics.Criteria{}, err
	}
	return kind, c, nil
}

// toolError turns a service error into a tool result. Caller mistakes are
// reported as is; anything else is wrapped.
func toolError(op string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrUnknownKind) || errors.Is(err, apperr.ErrUnknownDimension) ||
		errors.Is(err, apperr.ErrInvalidArgument) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) breakdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, c, err := analysisArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dim, err := req.RequireString("dimension")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.svc.Breakdown(ctx, kind, analytics.Dimension(strings.ToLower(dim)), c)
	if err != nil {
		return toolError("breakdown", err), nil
	}
	return jsonResult(b)
}

func (s *Server) topRanked(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, c, err := analysisArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dim, err := req.RequireString("dimension")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := req.GetInt("n", 0)
	within := req.GetInt("within_days", -1)
	rk, err := s.svc.Top(ctx, kind, analytics.Dimension(strings.ToLower(dim)), n, within, c)
	if err != nil {
		return toolError("top_ranked", err), nil
	}
	return jsonResult(rk)
}

func (s *Server) monthlySeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, c, err := analysisArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var years []int
	for _, part := range strings.Split(req.GetString("years", ""), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("years: %q is not a year", part)), nil
		}
		years = append(years, y)
	}
	ms, err := s.svc.Monthly(ctx, kind, years, c)
	if err != nil {
		return toolError("monthly_series", err), nil
	}
	return jsonResult(ms)
}

func (s *Server) forecastDemand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, c, err := analysisArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.svc.Forecast(ctx, kind, c)
	if err != nil {
		return toolError("forecast_demand", err), nil
	}
	return jsonResult(rep)
}

func (s *Server) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.store.List(req.GetString("folder", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(metas) == 0 {
		return mcp.NewToolResultText("no records found"), nil
	}

	paths := make([]string, 0, len(metas))
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getRecordFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uriRecordFormat,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}

func (s *Server) readVocabularyResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(api.NewVocabulary(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uriVocabulary,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
