package index

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"google.golang.org/api/discoveryengine/v1"

	"insurance_intel/pkg/core/ingest"
)

// DiscoveryConfig locates the target datastore branch.
type DiscoveryConfig struct {
	ProjectID   string
	Location    string // "global" unless the datastore is regional
	DataStoreID string
}

// BranchPath returns the documents parent for import and purge calls.
func (c DiscoveryConfig) BranchPath() string {
	return fmt.Sprintf(
		"projects/%s/locations/%s/collections/default_collection/dataStores/%s/branches/default_branch",
		c.ProjectID, c.Location, c.DataStoreID)
}

// DatastorePath returns the datastore resource name used by the Vertex AI
// Search grounding tool.
func (c DiscoveryConfig) DatastorePath() string {
	return fmt.Sprintf(
		"projects/%s/locations/%s/collections/default_collection/dataStores/%s",
		c.ProjectID, c.Location, c.DataStoreID)
}

// DiscoveryIndex imports chunks into a Discovery Engine datastore.
type DiscoveryIndex struct {
	svc *discoveryengine.Service
	cfg DiscoveryConfig
}

// NewDiscoveryIndex builds a client using application-default credentials.
func NewDiscoveryIndex(ctx context.Context, cfg DiscoveryConfig) (*DiscoveryIndex, error) {
	if cfg.ProjectID == "" || cfg.DataStoreID == "" {
		return nil, fmt.Errorf("discovery index: project and datastore IDs are required")
	}
	if cfg.Location == "" {
		cfg.Location = "global"
	}
	svc, err := discoveryengine.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create discovery engine service: %w", err)
	}
	return &DiscoveryIndex{svc: svc, cfg: cfg}, nil
}

// ImportBatch sends one inline import request with incremental
// reconciliation, so re-ingested chunks upsert by ID instead of duplicating.
func (d *DiscoveryIndex) ImportBatch(ctx context.Context, chunks []ingest.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]*discoveryengine.GoogleCloudDiscoveryengineV1Document, 0, len(chunks))
	for _, chunk := range chunks {
		structData, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal struct data for %s: %w", chunk.ID, err)
		}
		docs = append(docs, &discoveryengine.GoogleCloudDiscoveryengineV1Document{
			Id:         chunk.ID,
			StructData: structData,
			Content: &discoveryengine.GoogleCloudDiscoveryengineV1DocumentContent{
				MimeType: "text/plain",
				RawBytes: base64.StdEncoding.EncodeToString([]byte(chunk.Content)),
			},
		})
	}

	req := &discoveryengine.GoogleCloudDiscoveryengineV1ImportDocumentsRequest{
		InlineSource: &discoveryengine.GoogleCloudDiscoveryengineV1ImportDocumentsRequestInlineSource{
			Documents: docs,
		},
		ReconciliationMode: "INCREMENTAL",
	}
	op, err := d.svc.Projects.Locations.Collections.DataStores.Branches.Documents.
		Import(d.cfg.BranchPath(), req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("import %d documents: %w", len(docs), err)
	}
	if op.Error != nil {
		return fmt.Errorf("import operation failed: %s", op.Error.Message)
	}
	return nil
}

// Purge deletes every document in the datastore branch. Callers must gate
// this behind explicit confirmation; it is never run as part of ingestion.
func (d *DiscoveryIndex) Purge(ctx context.Context) (int64, error) {
	req := &discoveryengine.GoogleCloudDiscoveryengineV1PurgeDocumentsRequest{
		Filter: "*",
		Force:  true,
	}
	op, err := d.svc.Projects.Locations.Collections.DataStores.Branches.Documents.
		Purge(d.cfg.BranchPath(), req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("purge documents: %w", err)
	}
	if op.Error != nil {
		return 0, fmt.Errorf("purge operation failed: %s", op.Error.Message)
	}
	// The purge count arrives once the long-running operation resolves;
	// for a queued purge both payloads can still be empty.
	var counted struct {
		Count int64 `json:"purgeCount,string"`
	}
	for _, raw := range [][]byte{op.Response, op.Metadata} {
		if len(raw) > 0 && json.Unmarshal(raw, &counted) == nil && counted.Count > 0 {
			return counted.Count, nil
		}
	}
	return 0, nil
}
