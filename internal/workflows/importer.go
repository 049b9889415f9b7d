package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/provisr/provisr/internal/logger"
	"github.com/provisr/provisr/internal/n8n"
)

// DefaultIDsFile is the file the importer writes created workflow IDs to,
// relative to the workflow directory.
const DefaultIDsFile = "workflows_ids.json"

// Importer deploys workflow definition files into an n8n instance and records
// the resulting IDs so they can be activated later.
type Importer struct {
	client *n8n.Client
	log    *logger.Logger
}

// NewImporter creates an Importer backed by the given client.
func NewImporter(client *n8n.Client, log *logger.Logger) *Importer {
	return &Importer{client: client, log: log}
}

// Summary aggregates the outcome of an import or activation pass.
type Summary struct {
	Total  int
	Done   int
	Failed int
	IDs    []string
}

// ImportDir creates one workflow per *.json file in dir (sorted by name) and
// writes the created IDs to outputFile. Files that fail are reported and the
// remaining files are still attempted, matching a run-to-completion pass; the
// returned error is non-nil if any file failed.
func (imp *Importer) ImportDir(ctx context.Context, dir, outputFile string) (*Summary, error) {
	if outputFile == "" {
		outputFile = filepath.Join(dir, DefaultIDsFile)
	}

	files, err := listWorkflowFiles(dir, outputFile)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(files)}
	if len(files) == 0 {
		return summary, fmt.Errorf("no workflow files found in %s", dir)
	}

	for _, file := range files {
		wf, err := imp.importFile(ctx, file)
		if err != nil {
			summary.Failed++
			imp.log.Error(err, fmt.Sprintf("failed to create workflow from %s", filepath.Base(file)))
			continue
		}

		summary.Done++
		summary.IDs = append(summary.IDs, wf.ID)
		imp.log.WithFields(map[string]any{"workflow": wf.Name, "id": wf.ID}).Info("workflow created")
	}

	if err := writeIDs(outputFile, summary.IDs); err != nil {
		return summary, err
	}
	imp.log.Debug(fmt.Sprintf("saved %d workflow id(s) to %s", len(summary.IDs), outputFile))

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d workflow(s) failed to deploy", summary.Failed, summary.Total)
	}

	return summary, nil
}

// ActivateFromFile activates every workflow ID recorded in idsFile.
func (imp *Importer) ActivateFromFile(ctx context.Context, idsFile string) (*Summary, error) {
	data, err := os.ReadFile(idsFile)
	if err != nil {
		return nil, fmt.Errorf("reading workflow ids file: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", idsFile, err)
	}

	summary := &Summary{Total: len(ids), IDs: ids}
	if len(ids) == 0 {
		return summary, fmt.Errorf("no workflow ids found in %s", idsFile)
	}

	for _, id := range ids {
		if err := imp.client.ActivateWorkflow(ctx, id); err != nil {
			summary.Failed++
			imp.log.Error(err, fmt.Sprintf("failed to activate workflow %s", id))
			continue
		}
		summary.Done++
		imp.log.WithFields(map[string]any{"id": id}).Info("workflow activated")
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d workflow(s) failed to activate", summary.Failed, summary.Total)
	}

	return summary, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) (*n8n.Workflow, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if !json.Valid(payload) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}

	return imp.client.CreateWorkflow(ctx, payload)
}

func listWorkflowFiles(dir, outputFile string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading workflow directory: %w", err)
	}

	outputBase := filepath.Base(outputFile)
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || name == outputBase {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	sort.Strings(files)
	return files, nil
}

func writeIDs(path string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("saving workflow ids to %s: %w", path, err)
	}

	return nil
}
