package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/agenda/internal/template"
)

type templateService struct {
	templateDir string
	agenda      AgendaService
	observer    UseCaseObserver
}

type templateEntry struct {
	Index  int
	Path   string
	Schema *template.AgendaTemplate
}

func NewTemplateService(
	templateDir string,
	agenda AgendaService,
	observers ...UseCaseObserver,
) TemplateService {
	return &templateService{
		templateDir: templateDir,
		agenda:      agenda,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func (s *templateService) List(ctx context.Context) ([]TemplateInfo, error) {
	entries, err := s.loadTemplateEntries()
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	infos := make([]TemplateInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, TemplateInfo{
			Index:       entry.Index,
			ID:          entry.Schema.ID,
			Name:        entry.Schema.Name,
			Category:    entry.Schema.Category,
			Path:        entry.Path,
			Milestones:  len(entry.Schema.Milestones),
			Steps:       entry.Schema.StepCount(),
			SpanMinutes: entry.Schema.SpanMinutes(),
		})
	}
	return infos, nil
}

func (s *templateService) Get(ctx context.Context, ref string) (*template.AgendaTemplate, error) {
	entry, err := s.resolveTemplate(ref)
	if err != nil {
		return nil, err
	}
	return entry.Schema, nil
}

func (s *templateService) Apply(ctx context.Context, ref, eventRef string) (inst *template.Instantiation, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"template_ref": ref, "event_ref": eventRef}
	defer func() { observeUseCase(ctx, s.observer, "template-apply", startedAt, err, fields) }()

	var entry *templateEntry
	entry, err = s.resolveTemplate(ref)
	if err != nil {
		return nil, err
	}
	fields["template_path"] = entry.Path
	return s.agenda.ApplyTemplate(ctx, eventRef, entry.Schema)
}

func (s *templateService) resolveTemplate(name string) (*templateEntry, error) {
	input := strings.TrimSpace(name)
	if input == "" {
		return nil, fmt.Errorf("template '%s' not found: empty template name", name)
	}

	entries, err := s.loadTemplateEntries()
	if err != nil {
		return nil, fmt.Errorf("template '%s' not found: listing templates: %w", name, err)
	}

	// File stem, filename, template id or display name, case-insensitive.
	for i := range entries {
		entry := &entries[i]
		fileStem := strings.TrimSuffix(filepath.Base(entry.Path), filepath.Ext(entry.Path))
		filename := filepath.Base(entry.Path)
		if strings.EqualFold(fileStem, input) ||
			strings.EqualFold(filename, input) ||
			strings.EqualFold(entry.Schema.ID, input) ||
			strings.EqualFold(entry.Schema.Name, input) {
			return entry, nil
		}
	}

	// Number shown by `template list`.
	if numericID, err := strconv.Atoi(input); err == nil {
		for i := range entries {
			entry := &entries[i]
			if entry.Index == numericID {
				return entry, nil
			}
		}
	}

	return nil, fmt.Errorf("template '%s' not found in %s", name, s.templateDir)
}

// loadTemplateEntries reads every *.json file in the template directory.
// Files that fail to parse or validate are skipped.
func (s *templateService) loadTemplateEntries() ([]templateEntry, error) {
	files, err := filepath.Glob(filepath.Join(s.templateDir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	entries := make([]templateEntry, 0, len(files))
	for _, file := range files {
		schema, err := template.LoadSchema(file)
		if err != nil {
			continue
		}
		if errs := template.ValidateSchema(schema); len(errs) > 0 {
			continue
		}
		entries = append(entries, templateEntry{
			Index:  len(entries) + 1,
			Path:   file,
			Schema: schema,
		})
	}
	return entries, nil
}
