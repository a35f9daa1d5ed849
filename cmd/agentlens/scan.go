package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/agentlens/agentlens/pkg/linkdocs"
	"github.com/agentlens/agentlens/pkg/locator"
	"github.com/agentlens/agentlens/pkg/presenter"
	"github.com/agentlens/agentlens/pkg/skills"
	"github.com/agentlens/agentlens/pkg/types/catalog"
)

// ScanConfig holds the flag values for the scan command.
type ScanConfig struct {
	MaxDepth         int
	MaxContentLength int
	MaxDocs          int
	Concurrency      int
	Timeout          time.Duration
	SummarizerCmd    string
	IgnorePatterns   []string
	Format           string
	Quiet            bool
}

// NewScanConfig returns the scan defaults.
func NewScanConfig() *ScanConfig {
	return &ScanConfig{
		MaxDepth:    -1,
		MaxDocs:     linkdocs.DefaultMaxDocs,
		Concurrency: linkdocs.DefaultConcurrency,
		Timeout:     linkdocs.DefaultTimeout,
		Format:      "json",
	}
}

// scanOutput is the combined catalog printed by the scan command.
type scanOutput struct {
	Artifacts   []catalog.ContextArtifact `json:"artifacts" yaml:"artifacts"`
	Skills      []catalog.Skill           `json:"skills" yaml:"skills"`
	SkillReport catalog.SkillReport       `json:"skillReport" yaml:"skillReport"`
	LinkedDocs  catalog.LinkedDocsResult  `json:"linkedDocs" yaml:"linkedDocs"`
}

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Build the context artifact, skill, and linked-doc catalogs",
	Long: `Scan a repository root (default: current directory) for agent context
files and SKILL.md manifests, deduplicate them, and resolve linked
documents. Linked documents are summarized through the command given by
--summarizer-cmd; without one, fallback summaries are used.

Examples:
  agentlens scan
  agentlens scan /path/to/repo --format yaml
  agentlens scan --summarizer-cmd "claude -p" --concurrency 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := "."
		if len(args) == 1 {
			baseDir = args[0]
		}
		return runScan(cmd.Context(), baseDir, getScanConfig())
	},
}

func init() {
	bindScanFlags(scanCmd.Flags())
}

func bindScanFlags(flags *pflag.FlagSet) {
	defaults := NewScanConfig()
	flags.Int("max-depth", defaults.MaxDepth, "maximum path depth to scan (-1 for unlimited)")
	flags.Int("max-content-length", 0, "content truncation limit for artifacts and linked docs (0 for per-catalog defaults)")
	flags.Int("max-docs", defaults.MaxDocs, "maximum number of linked documents to resolve")
	flags.Int("concurrency", defaults.Concurrency, "concurrent summarization limit (1-10)")
	flags.Duration("timeout", defaults.Timeout, "per-summarization timeout")
	flags.String("summarizer-cmd", "", "command invoked per summarization prompt (prompt on stdin)")
	flags.StringSlice("ignore", nil, "extra glob patterns to exclude from discovery")
	flags.String("format", defaults.Format, "output format (json, yaml)")
	flags.Bool("quiet", false, "suppress progress messages")

	viper.BindPFlag("max_depth", flags.Lookup("max-depth"))
	viper.BindPFlag("max_content_length", flags.Lookup("max-content-length"))
	viper.BindPFlag("max_docs", flags.Lookup("max-docs"))
	viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	viper.BindPFlag("timeout", flags.Lookup("timeout"))
	viper.BindPFlag("summarizer_cmd", flags.Lookup("summarizer-cmd"))
	viper.BindPFlag("ignore", flags.Lookup("ignore"))
	viper.BindPFlag("format", flags.Lookup("format"))
	viper.BindPFlag("quiet", flags.Lookup("quiet"))
}

// getScanConfig reads the effective settings through viper, so explicit
// flags win over AGENTLENS_* env vars, which win over the config file.
func getScanConfig() *ScanConfig {
	config := NewScanConfig()
	config.MaxDepth = viper.GetInt("max_depth")
	config.MaxContentLength = viper.GetInt("max_content_length")
	config.MaxDocs = viper.GetInt("max_docs")
	config.Concurrency = viper.GetInt("concurrency")
	config.Timeout = viper.GetDuration("timeout")
	config.SummarizerCmd = viper.GetString("summarizer_cmd")
	config.IgnorePatterns = viper.GetStringSlice("ignore")
	config.Format = viper.GetString("format")
	config.Quiet = viper.GetBool("quiet")
	return config
}

// linkOptions maps the scan settings onto the linked-doc resolver. A zero
// MaxContentLength leaves the resolver's own default in effect.
func (c *ScanConfig) linkOptions() linkdocs.Options {
	opts := linkdocs.Options{
		MaxDocs:          c.MaxDocs,
		MaxContentLength: c.MaxContentLength,
		Concurrency:      c.Concurrency,
		Timeout:          c.Timeout,
	}
	if c.SummarizerCmd != "" {
		opts.Provider = newExecProvider(c.SummarizerCmd)
	}
	return opts
}

func runScan(ctx context.Context, baseDir string, config *ScanConfig) error {
	p := presenter.New()
	p.SetQuiet(config.Quiet)

	locatorOpts := []locator.Option{}
	if config.MaxDepth >= 0 {
		locatorOpts = append(locatorOpts, locator.WithMaxDepth(config.MaxDepth))
	}
	if config.MaxContentLength > 0 {
		locatorOpts = append(locatorOpts, locator.WithMaxContentLength(config.MaxContentLength))
	}
	if len(config.IgnorePatterns) > 0 {
		locatorOpts = append(locatorOpts, locator.WithIgnorePatterns(config.IgnorePatterns...))
	}

	artifacts, err := locator.Locate(ctx, baseDir, locatorOpts...)
	if err != nil {
		return errors.Wrap(err, "artifact discovery failed")
	}
	p.Success(fmt.Sprintf("found %d context artifacts", len(artifacts)))

	skillOpts := []skills.Option{}
	if config.MaxDepth >= 0 {
		skillOpts = append(skillOpts, skills.WithMaxDepth(config.MaxDepth))
	}
	discovered, err := skills.Discover(ctx, baseDir, skillOpts...)
	if err != nil {
		return errors.Wrap(err, "skill discovery failed")
	}
	uniqueSkills, report := skills.SummarizeAndDeduplicate(discovered)
	p.Success(fmt.Sprintf("cataloged %d skills (%d duplicates removed)", report.UniqueCount, report.DuplicatesRemoved))

	sourcePaths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		sourcePaths = append(sourcePaths, a.Path)
	}

	linkOpts := config.linkOptions()
	if linkOpts.Provider == nil {
		p.Warning("no --summarizer-cmd configured, linked docs get fallback summaries")
	}

	linkedDocs, err := linkdocs.DiscoverLinkedDocs(ctx, sourcePaths, baseDir, linkOpts)
	if err != nil {
		return errors.Wrap(err, "linked document resolution failed")
	}
	p.Success(fmt.Sprintf("resolved %d of %d linked documents", len(linkedDocs.Docs), linkedDocs.TotalLinksFound))

	output := scanOutput{
		Artifacts:   artifacts,
		Skills:      uniqueSkills,
		SkillReport: report,
		LinkedDocs:  linkedDocs,
	}
	return writeOutput(os.Stdout, output, config.Format)
}

func writeOutput(w io.Writer, output scanOutput, format string) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(output)
		if err != nil {
			return errors.Wrap(err, "failed to marshal catalog")
		}
		_, err = w.Write(data)
		return err
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}
	return errors.Errorf("unknown output format %q", format)
}
