package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve coursemate to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Model Context Protocol server",
	Long: `Run a Model Context Protocol server that lets other assistants ask
questions against your courses, list documents and read index stats.

Without --port the server talks JSON-RPC on stdin and stdout, which is what
desktop assistants launch. With --port it serves streamable HTTP, plus a
/healthz probe.

The upload_files tool writes to your index and is off unless --allow-upload
is given.

  coursemate mcp serve
  coursemate mcp serve --port 8080 --allow-upload

To register with a desktop assistant:

  {"mcpServers": {"coursemate": {"command": "coursemate", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	f := mcpServeCmd.Flags()
	f.IntP("port", "p", 0, "serve HTTP on this port instead of stdio")
	f.String("host", "localhost", "interface to bind in HTTP mode")
	f.Bool("allow-upload", false, "let clients add files through the upload_files tool")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

type mcpServeOptions struct {
	host        string
	port        int
	allowUpload bool
}

func mcpOptions(cmd *cobra.Command) (mcpServeOptions, error) {
	var opts mcpServeOptions
	var err error
	f := cmd.Flags()
	if opts.port, err = f.GetInt("port"); err != nil {
		return opts, err
	}
	if opts.port < 0 || opts.port > 65535 {
		return opts, fmt.Errorf("invalid port %d", opts.port)
	}
	if opts.host, err = f.GetString("host"); err != nil {
		return opts, err
	}
	opts.allowUpload, err = f.GetBool("allow-upload")
	return opts, err
}

func (o mcpServeOptions) ports() *mcp.Ports {
	p := &mcp.Ports{Assistant: assistantService, Library: libraryService}
	if o.allowUpload {
		p.Ingest = ingestService
	}
	return p
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	opts, err := mcpOptions(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(opts.ports())
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if opts.port == 0 {
		return server.Run(ctx)
	}

	addr := net.JoinHostPort(opts.host, strconv.Itoa(opts.port))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}
