package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/subsigma/rolldice/internal/services/mcp/domain"
)

func registerNotationTools(server *mcp.Server, client domain.NotationClient) error {
	if server == nil {
		return fmt.Errorf("MCP server is required")
	}
	if client == nil {
		return fmt.Errorf("notation client is required")
	}
	mcp.AddTool(server, domain.RollNotationTool(), domain.RollNotationHandler(client))
	mcp.AddTool(server, domain.NotationStatisticsTool(), domain.NotationStatisticsHandler(client))
	return nil
}
