package mcp

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/bobmcallan/vox-portal/internal/config"
	"github.com/bobmcallan/vox-portal/internal/portal"
	"github.com/bobmcallan/vox-portal/internal/voice"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers the portal tools on s and returns how many.
func RegisterTools(s *server.MCPServer, svc *portal.Service) int {
	tools := []server.ServerTool{
		{Tool: VersionTool(), Handler: VersionToolHandler()},
		{Tool: StockChartTool(), Handler: StockChartHandler(svc)},
		{Tool: TrendingTool(), Handler: TrendingHandler(svc)},
		{Tool: DogImagesTool(), Handler: DogImagesHandler(svc)},
		{Tool: BreedsTool(), Handler: BreedsHandler(svc)},
		{Tool: VoiceTool(), Handler: VoiceHandler(svc)},
	}
	s.AddTools(tools...)
	return len(tools)
}

// Service failures are reported as tool errors, not protocol errors,
// so the calling model sees the message.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(message)},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult("encode result: " + err.Error())
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(out))}}
}

// VersionTool reports the build. Clients use it as a connectivity probe.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get vox-portal version. Use this to verify connectivity."),
	)
}

// VersionToolHandler returns the same build identity as /api/version.
func VersionToolHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(config.Info()), nil
	}
}

// StockChartTool fetches a daily close chart.
func StockChartTool() mcp.Tool {
	return mcp.NewTool("get_stock_chart",
		mcp.WithDescription("Daily closing prices for a ticker over the last N days, as a line chart spec."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Stock ticker, e.g. AAPL")),
		mcp.WithNumber("range", mcp.Description("Number of calendar days ending today (default 30)")),
	)
}

// StockChartHandler serves get_stock_chart.
func StockChartHandler(svc *portal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rng := ""
		if days := r.GetInt("range", 0); days != 0 {
			rng = strconv.Itoa(days)
		}
		res, err := svc.StockChart(ctx, r.GetString("ticker", ""), rng)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(res), nil
	}
}

// TrendingTool lists the top trending reddit stocks.
func TrendingTool() mcp.Tool {
	return mcp.NewTool("get_trending_stocks",
		mcp.WithDescription("Top five stocks by reddit comment volume with sentiment."),
	)
}

// TrendingHandler serves get_trending_stocks.
func TrendingHandler(svc *portal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rows, err := svc.TrendingStocks(ctx)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"rows": rows}), nil
	}
}

// DogImagesTool fetches random dog image URLs.
func DogImagesTool() mcp.Tool {
	return mcp.NewTool("get_dog_images",
		mcp.WithDescription("A fresh batch of random dog image URLs."),
	)
}

// DogImagesHandler serves get_dog_images.
func DogImagesHandler(svc *portal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		images, err := svc.DogImages(ctx)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"images": images}), nil
	}
}

// BreedsTool lists dog breeds.
func BreedsTool() mcp.Tool {
	return mcp.NewTool("list_dog_breeds",
		mcp.WithDescription("All dog breeds with temperament and life span."),
	)
}

// BreedsHandler serves list_dog_breeds.
func BreedsHandler(svc *portal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		breeds, err := svc.DogBreeds(ctx)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"breeds": breeds}), nil
	}
}

// VoiceTool interprets a spoken phrase.
func VoiceTool() mcp.Tool {
	return mcp.NewTool("voice_command",
		mcp.WithDescription("Interpret a spoken phrase against a page and return the page effects to apply."),
		mcp.WithArray("phrases", mcp.Required(), mcp.WithStringItems(), mcp.Description("Recognition alternatives, most likely first")),
		mcp.WithBoolean("ticker_input", mcp.Description("Whether the page has a ticker field")),
		mcp.WithArray("breeds", mcp.WithStringItems(), mcp.Description("Breed button labels on the page, in order")),
	)
}

// VoiceHandler serves voice_command.
func VoiceHandler(svc *portal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		phrases := r.GetStringSlice("phrases", nil)
		if len(phrases) == 0 {
			return errorResult("phrases is required"), nil
		}
		res := svc.Voice(ctx, portal.VoiceRequest{
			Phrases: phrases,
			Page: voice.PageState{
				TickerInput: r.GetBool("ticker_input", false),
				Breeds:      r.GetStringSlice("breeds", nil),
			},
		})
		return jsonResult(res), nil
	}
}
