// Optional archival of update-log envelopes to GreptimeDB.
package archive

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"fusionops-sim/internal/catalog"
)

const updatesTable = "fusion_updates"

// Greptime implements catalog.UpdateWriter against a GreptimeDB instance.
// The table is created automatically on first write.
type Greptime struct {
	client *greptime.Client
	log    *slog.Logger
}

// NewGreptime connects to the ingester. endpoint is "host" or "host:port";
// the port defaults to 4001.
func NewGreptime(endpoint, database string, log *slog.Logger) (*Greptime, error) {
	if log == nil {
		log = slog.Default()
	}
	host, port := endpoint, 4001
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			host, port = h, n
		}
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Greptime{client: client, log: log}, nil
}

// WriteUpdate inserts one update envelope row.
func (g *Greptime) WriteUpdate(row catalog.UpdateRow) error {
	tbl, err := table.New(updatesTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("type", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("payload", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	if err := tbl.AddRow(row.Type, row.Payload, row.Timestamp); err != nil {
		return err
	}
	if _, err := g.client.Write(context.Background(), tbl); err != nil {
		return err
	}
	return nil
}
