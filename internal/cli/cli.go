// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/ghtree/internal/config"
	"github.com/temirov/ghtree/internal/github"
	"github.com/temirov/ghtree/internal/gitlocal"
	"github.com/temirov/ghtree/internal/output"
	"github.com/temirov/ghtree/internal/services/clipboard"
	"github.com/temirov/ghtree/internal/services/httpapi"
	"github.com/temirov/ghtree/internal/tui"
	"github.com/temirov/ghtree/internal/types"
	"github.com/temirov/ghtree/internal/utils"
	"github.com/temirov/ghtree/internal/viewer"
)

const (
	configFlagName      = "config"
	verboseFlagName     = "verbose"
	localFlagName       = "local"
	tokenFlagName       = "token"
	apiBaseFlagName     = "api-base"
	branchFlagName      = "branch"
	queryFlagName       = "query"
	queryFlagShorthand  = "q"
	formatFlagName      = "format"
	exclusionFlagName   = "exclude"
	exclusionShorthand  = "e"
	excludeFileFlagName = "exclude-file"
	summaryFlagName     = "summary"
	highlightFlagName   = "highlight"
	copyFlagName        = "copy"
	modeFlagName        = "mode"
	addressFlagName     = "address"
	globalFlagName      = "global"
	forceFlagName       = "force"

	versionTemplate      = "ghtree version: {{.Version}}\n"
	userAgentPrefix      = "ghtree/"
	rootUse              = "ghtree"
	rootShortDescription = "ghtree command line interface"
	rootLongDescription  = `ghtree browses the file tree of a GitHub repository.
It renders the tree or a flat file list for any branch, filters it by a search query
and highlights the matches. Use view for the interactive viewer and serve to expose the
same data over HTTP.`

	treeUse                  = "tree [owner/repo]"
	listUse                  = "list [owner/repo]"
	branchesUse              = "branches [owner/repo]"
	viewUse                  = "view [owner/repo]"
	serveUse                 = "serve [owner/repo]"
	initUse                  = "init"
	treeAlias                = "t"
	listAlias                = "l"
	branchesAlias            = "b"
	viewAlias                = "v"
	treeShortDescription     = "display the repository tree (" + treeAlias + ")"
	listShortDescription     = "list repository files (" + listAlias + ")"
	branchesShortDescription = "list repository branches (" + branchesAlias + ")"
	viewShortDescription     = "browse the repository interactively (" + viewAlias + ")"
	serveShortDescription    = "serve the repository tree over HTTP"
	initShortDescription     = "write a default configuration file"

	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Render the file tree of a branch. Directories come first, then files,
each group ordered by name. Use -q to keep only matching entries and --format to select
raw, json, or xml output.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Render the default branch
  ghtree tree charmbracelet/bubbletea

  # Search a branch and emit JSON
  ghtree tree octo/hello --branch develop -q readme --format json

  # Render a local clone, skipping vendored code
  ghtree tree --local . -e vendor`

	listLongDescription = `List every file of a branch with its size, filtered by full path.`
	listUsageExample    = `  # Files whose path contains "test"
  ghtree list octo/hello -q test`

	viewUsageExample = `  # Open the viewer in list mode
  ghtree view octo/hello --mode list`

	serveUsageExample = `  # Serve on a custom address
  ghtree serve octo/hello --address 127.0.0.1:9000`

	configFlagDescription      = "path to a configuration file"
	verboseFlagDescription     = "enable debug logging"
	localFlagDescription       = "read a local git repository instead of GitHub"
	tokenFlagDescription       = "GitHub token"
	apiBaseFlagDescription     = "GitHub API base URL"
	branchFlagDescription      = "branch to load (defaults to the repository default branch)"
	queryFlagDescription       = "search query"
	formatFlagDescription      = "output format"
	exclusionFlagDescription   = "exclude path pattern"
	excludeFileFlagDescription = "file with exclude patterns, one per line"
	summaryFlagDescription     = "include summary of resulting files"
	highlightFlagDescription   = "highlight query matches in raw output"
	copyFlagDescription        = "copy output to clipboard"
	modeFlagDescription        = "initial view mode (tree or list)"
	addressFlagDescription     = "listen address"
	globalFlagDescription      = "write the global configuration instead of the local one"
	forceFlagDescription       = "overwrite an existing configuration file"

	invalidFormatMessage      = "Invalid format value '%s'"
	invalidModeMessage        = "Invalid mode value '%s'"
	titleFormat               = "%s@%s"
	servingMessageFormat      = "Serving %s on http://%s\n"
	configurationWrittenFmt   = "Configuration written to %s\n"
	clipboardCopyErrorFormat  = "copy output to clipboard: %w"
	loadConfigurationErrorFmt = "load configuration: %w"
	loadExcludeFileErrorFmt   = "load exclude file: %w"
)

var errMissingRepository = errors.New("repository is required: pass owner/repo, --local PATH or set repository.slug in " + utils.ConfigFileName)

// Dependencies are the collaborators shared by every command. Zero fields
// fall back to production implementations.
type Dependencies struct {
	Logger *zap.Logger
	// Level is raised to debug by --verbose.
	Level            *zap.AtomicLevel
	HTTPClient       *http.Client
	Clipboard        clipboard.Copier
	// Mark decorates query matches in raw output when --highlight is on.
	Mark             func(string) string
	WorkingDirectory string
	// IgnoreEnvironment skips GHTREE_* and GITHUB_TOKEN variables when loading configuration.
	IgnoreEnvironment bool
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.HTTPClient == nil {
		dependencies.HTTPClient = &http.Client{}
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	if dependencies.Mark == nil {
		dependencies.Mark = tui.MarkText
	}
	return dependencies
}

// application carries persistent flag values and the loaded configuration.
type application struct {
	dependencies      Dependencies
	configuration     config.ApplicationConfiguration
	configurationPath string
	verbose           bool
	localPath         string
	token             string
	apiBase           string
}

// listingOptions stores the flags of the tree and list commands.
type listingOptions struct {
	branch      string
	query       string
	format      string
	exclusion   exclusionOptions
	summary     bool
	highlight   bool
	copyEnabled bool
}

type exclusionOptions struct {
	patterns []string
	file     string
}

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

func isSupportedMode(mode string) bool {
	return mode == types.ModeTree || mode == types.ModeList
}

// Execute runs the ghtree application until it finishes or receives an interrupt.
func Execute(logger *zap.Logger, level zap.AtomicLevel) error {
	rootCommand := NewRootCommand(Dependencies{Logger: logger, Level: &level})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCommand.ExecuteContext(ctx)
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	app := &application{dependencies: dependencies.withDefaults()}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Version:      utils.GetApplicationVersion(),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepare(command)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&app.configurationPath, configFlagName, "", configFlagDescription)
	persistentFlags.BoolVar(&app.verbose, verboseFlagName, false, verboseFlagDescription)
	persistentFlags.StringVar(&app.localPath, localFlagName, "", localFlagDescription)
	persistentFlags.StringVar(&app.token, tokenFlagName, "", tokenFlagDescription)
	persistentFlags.StringVar(&app.apiBase, apiBaseFlagName, "", apiBaseFlagDescription)

	rootCommand.AddCommand(
		app.createListingCommand(types.CommandTree),
		app.createListingCommand(types.CommandList),
		app.createBranchesCommand(),
		app.createViewCommand(),
		app.createServeCommand(),
		app.createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// prepare applies --verbose and loads configuration before any subcommand runs.
func (app *application) prepare(command *cobra.Command) error {
	if app.verbose && app.dependencies.Level != nil {
		app.dependencies.Level.SetLevel(zapcore.DebugLevel)
	}
	if command.Name() == initUse {
		return nil
	}
	loaded, loadErr := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory:  app.dependencies.WorkingDirectory,
		ExplicitFilePath:  app.configurationPath,
		IgnoreEnvironment: app.dependencies.IgnoreEnvironment,
	})
	if loadErr != nil {
		return fmt.Errorf(loadConfigurationErrorFmt, loadErr)
	}
	app.configuration = config.DefaultConfiguration().Merge(loaded)
	app.dependencies.Logger.Debug("configuration loaded", zap.String("api_base", app.configuration.GitHub.APIBase), zap.String("format", app.configuration.View.Format))
	return nil
}

func addExclusionFlags(command *cobra.Command, options *exclusionOptions) {
	command.Flags().StringArrayVarP(&options.patterns, exclusionFlagName, exclusionShorthand, nil, exclusionFlagDescription)
	command.Flags().StringVar(&options.file, excludeFileFlagName, "", excludeFileFlagDescription)
}

// createListingCommand returns the tree or list subcommand.
func (app *application) createListingCommand(commandName string) *cobra.Command {
	var options listingOptions

	listingCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return app.runListing(command, arguments, commandName, options)
		},
	}
	if commandName == types.CommandList {
		listingCommand.Use = listUse
		listingCommand.Aliases = []string{listAlias}
		listingCommand.Short = listShortDescription
		listingCommand.Long = listLongDescription
		listingCommand.Example = listUsageExample
	}

	flags := listingCommand.Flags()
	flags.StringVar(&options.branch, branchFlagName, "", branchFlagDescription)
	flags.StringVarP(&options.query, queryFlagName, queryFlagShorthand, "", queryFlagDescription)
	flags.StringVar(&options.format, formatFlagName, types.FormatRaw, formatFlagDescription)
	addExclusionFlags(listingCommand, &options.exclusion)
	registerBooleanFlag(flags, &options.summary, summaryFlagName, true, summaryFlagDescription)
	registerBooleanFlag(flags, &options.highlight, highlightFlagName, true, highlightFlagDescription)
	registerBooleanFlag(flags, &options.copyEnabled, copyFlagName, false, copyFlagDescription)
	return listingCommand
}

// createBranchesCommand returns the branches subcommand.
func (app *application) createBranchesCommand() *cobra.Command {
	var outputFormat string

	branchesCommand := &cobra.Command{
		Use:     branchesUse,
		Aliases: []string{branchesAlias},
		Short:   branchesShortDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			format, formatErr := app.resolveFormat(command, outputFormat)
			if formatErr != nil {
				return formatErr
			}
			source, sourceErr := app.newSource(arguments)
			if sourceErr != nil {
				return sourceErr
			}
			session := viewer.NewSession(source, nil, app.dependencies.Logger)
			defer session.Close()
			requestCtx, ticket := session.Begin(command.Context(), "")
			details, detailsErr := session.FetchDetails(requestCtx, ticket)
			if detailsErr != nil {
				return detailsErr
			}
			current, commitErr := session.CommitDetails(details)
			if commitErr != nil {
				return commitErr
			}
			rendered, renderErr := output.RenderBranches(format, details.Branches, current)
			if renderErr != nil {
				return renderErr
			}
			return app.emit(command, rendered)
		},
	}
	branchesCommand.Flags().StringVar(&outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	return branchesCommand
}

// createViewCommand returns the interactive viewer subcommand.
func (app *application) createViewCommand() *cobra.Command {
	var branch string
	var mode string
	var exclusion exclusionOptions

	viewCommand := &cobra.Command{
		Use:     viewUse,
		Aliases: []string{viewAlias},
		Short:   viewShortDescription,
		Example: viewUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			resolvedMode := mode
			if !command.Flags().Changed(modeFlagName) && app.configuration.View.Mode != "" {
				resolvedMode = app.configuration.View.Mode
			}
			resolvedMode = strings.ToLower(resolvedMode)
			if !isSupportedMode(resolvedMode) {
				return fmt.Errorf(invalidModeMessage, resolvedMode)
			}
			// Log lines would corrupt the full-screen display unless explicitly requested.
			logger := zap.NewNop()
			if app.verbose {
				logger = app.dependencies.Logger
			}
			session, sessionErr := app.newSession(command, arguments, exclusion, logger)
			if sessionErr != nil {
				return sessionErr
			}
			return tui.Run(command.Context(), session, tui.Options{
				Branch: app.resolveBranch(branch),
				Mode:   resolvedMode,
				Logger: logger,
			})
		},
	}
	viewCommand.Flags().StringVar(&branch, branchFlagName, "", branchFlagDescription)
	viewCommand.Flags().StringVar(&mode, modeFlagName, types.ModeTree, modeFlagDescription)
	addExclusionFlags(viewCommand, &exclusion)
	return viewCommand
}

// createServeCommand returns the HTTP service subcommand.
func (app *application) createServeCommand() *cobra.Command {
	var branch string
	var address string
	var exclusion exclusionOptions

	serveCommand := &cobra.Command{
		Use:     serveUse,
		Short:   serveShortDescription,
		Example: serveUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if !command.Flags().Changed(addressFlagName) {
				address = app.configuration.Serve.Address
			}
			session, sessionErr := app.newSession(command, arguments, exclusion, app.dependencies.Logger)
			if sessionErr != nil {
				return sessionErr
			}
			defer session.Close()
			if openErr := session.OpenAt(command.Context(), app.resolveBranch(branch)); openErr != nil {
				return openErr
			}
			repositoryName := session.State().Repository.FullName
			server := httpapi.NewServer(httpapi.Config{
				Address: address,
				Session: session,
				Logger:  app.dependencies.Logger,
			})
			return server.Run(command.Context(), func(boundAddress string) {
				fmt.Fprintf(command.ErrOrStderr(), servingMessageFormat, repositoryName, boundAddress)
			})
		},
	}
	serveCommand.Flags().StringVar(&branch, branchFlagName, "", branchFlagDescription)
	serveCommand.Flags().StringVar(&address, addressFlagName, "", addressFlagDescription)
	addExclusionFlags(serveCommand, &exclusion)
	return serveCommand
}

// createInitCommand returns the configuration bootstrap subcommand.
func (app *application) createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			destination, initErr := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.dependencies.WorkingDirectory,
			})
			if initErr != nil {
				return initErr
			}
			fmt.Fprintf(command.OutOrStdout(), configurationWrittenFmt, destination)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// runListing loads one branch and prints it as a tree or a flat list.
func (app *application) runListing(command *cobra.Command, arguments []string, commandName string, options listingOptions) error {
	resolved := app.resolveListingOptions(command, options)
	format, formatErr := app.resolveFormat(command, resolved.format)
	if formatErr != nil {
		return formatErr
	}
	session, sessionErr := app.newSession(command, arguments, resolved.exclusion, app.dependencies.Logger)
	if sessionErr != nil {
		return sessionErr
	}
	defer session.Close()
	if openErr := session.OpenAt(command.Context(), resolved.branch); openErr != nil {
		return openErr
	}

	state := session.SetQuery(resolved.query)
	renderOptions := output.Options{
		Title:          fmt.Sprintf(titleFormat, state.Repository.FullName, state.Branch),
		Query:          state.Query,
		IncludeSummary: resolved.summary,
	}
	renderListing := func(mark func(string) string) (string, error) {
		renderOptions.Mark = mark
		if commandName == types.CommandList {
			return output.RenderList(format, state.ListView(), renderOptions)
		}
		return output.RenderTree(format, state.TreeView(), renderOptions)
	}

	var mark func(string) string
	if resolved.highlight {
		mark = app.dependencies.Mark
	}
	rendered, renderErr := renderListing(mark)
	if renderErr != nil {
		return renderErr
	}
	if emitErr := app.emit(command, rendered); emitErr != nil || !resolved.copyEnabled {
		return emitErr
	}
	// The clipboard never receives terminal styling.
	if mark != nil {
		if rendered, renderErr = renderListing(nil); renderErr != nil {
			return renderErr
		}
	}
	return app.copyText(rendered)
}

// resolveListingOptions fills flags the user did not set from configuration.
func (app *application) resolveListingOptions(command *cobra.Command, options listingOptions) listingOptions {
	view := app.configuration.View
	flags := command.Flags()
	if !flags.Changed(summaryFlagName) && view.Summary != nil {
		options.summary = *view.Summary
	}
	if !flags.Changed(highlightFlagName) && view.Highlight != nil {
		options.highlight = *view.Highlight
	}
	if !flags.Changed(copyFlagName) && view.Copy != nil {
		options.copyEnabled = *view.Copy
	}
	options.branch = app.resolveBranch(options.branch)
	return options
}

func (app *application) resolveFormat(command *cobra.Command, format string) (string, error) {
	if !command.Flags().Changed(formatFlagName) && app.configuration.View.Format != "" {
		format = app.configuration.View.Format
	}
	normalized := strings.ToLower(strings.TrimSpace(format))
	if !isSupportedFormat(normalized) {
		return "", fmt.Errorf(invalidFormatMessage, normalized)
	}
	return normalized, nil
}

func (app *application) resolveBranch(branch string) string {
	if branch != "" {
		return branch
	}
	return app.configuration.Repository.Branch
}

// resolveExclusionPatterns merges the exclude file with configured and explicit patterns.
func (app *application) resolveExclusionPatterns(command *cobra.Command, options exclusionOptions) ([]string, error) {
	excludeFile := options.file
	if !command.Flags().Changed(excludeFileFlagName) {
		excludeFile = app.configuration.View.ExcludeFile
	}
	filePatterns, loadErr := config.LoadExcludeFile(excludeFile)
	if loadErr != nil {
		return nil, fmt.Errorf(loadExcludeFileErrorFmt, loadErr)
	}
	explicit := append(append([]string{}, app.configuration.View.Exclude...), options.patterns...)
	return config.CombineExcludePatterns(filePatterns, explicit), nil
}

func (app *application) newSession(command *cobra.Command, arguments []string, exclusion exclusionOptions, logger *zap.Logger) (*viewer.Session, error) {
	patterns, patternsErr := app.resolveExclusionPatterns(command, exclusion)
	if patternsErr != nil {
		return nil, patternsErr
	}
	source, sourceErr := app.newSource(arguments)
	if sourceErr != nil {
		return nil, sourceErr
	}
	return viewer.NewSession(source, patterns, logger), nil
}

// newSource picks the repository to read: --local first, then the
// argument, then the configured local path or slug.
func (app *application) newSource(arguments []string) (viewer.Source, error) {
	repositoryConfiguration := app.configuration.Repository
	if app.localPath != "" {
		return openLocal(app.localPath)
	}
	slug := repositoryConfiguration.Slug
	if len(arguments) > 0 {
		slug = arguments[0]
	} else if repositoryConfiguration.Local != "" {
		return openLocal(repositoryConfiguration.Local)
	}
	if strings.TrimSpace(slug) == "" {
		return nil, errMissingRepository
	}
	owner, repository, parseErr := utils.ParseRepositorySlug(slug)
	if parseErr != nil {
		return nil, parseErr
	}

	githubConfiguration := app.configuration.GitHub
	apiBase := githubConfiguration.APIBase
	if app.apiBase != "" {
		apiBase = app.apiBase
	}
	token := githubConfiguration.Token
	if app.token != "" {
		token = app.token
	}
	client := github.NewClient(app.dependencies.HTTPClient).
		WithAPIBase(apiBase).
		WithUserAgent(userAgentPrefix + utils.GetApplicationVersion()).
		WithTimeout(githubConfiguration.Timeout).
		WithAuthorizationToken(token)
	app.dependencies.Logger.Debug("reading repository from GitHub", zap.String("owner", owner), zap.String("repository", repository), zap.Bool("authenticated", token != ""))
	return client.ForRepository(owner, repository), nil
}

func openLocal(path string) (viewer.Source, error) {
	source, openErr := gitlocal.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	return source, nil
}

// emit prints rendered output with a trailing newline.
func (app *application) emit(command *cobra.Command, rendered string) error {
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, writeErr := fmt.Fprint(command.OutOrStdout(), rendered)
	return writeErr
}

func (app *application) copyText(text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if copyErr := app.dependencies.Clipboard.Copy(text); copyErr != nil {
		return fmt.Errorf(clipboardCopyErrorFormat, copyErr)
	}
	return nil
}
