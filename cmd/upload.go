package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"decalup/internal/assetapi"
	"decalup/internal/batch"
	"decalup/internal/imageprep"
	"decalup/internal/models"
	"decalup/internal/naming"
	"decalup/internal/report"
	"decalup/internal/s3client"
	"decalup/internal/source"
	"decalup/pkg/utils"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultReportPath = "roblox_upload_results.csv"

var uploadCmd = &cobra.Command{
	Use:   "upload [files/folders/zips...]",
	Short: "Upload images as Decal assets",
	Long: `Upload images as individually named Decal assets.

Images can come from local files, folders (searched recursively for .png/.jpg/.jpeg),
zip archives, URLs (--url, --url-file) and an S3 bucket prefix (--s3-prefix).
They are uploaded one at a time in that order, with an optional pause between uploads.

Names come from the file name by default. Use --naming pattern with --pattern to number
them, or --naming list with --names-file for one name per line.

Every image produces one row in the report, whether it succeeded or not. The report is
printed as a table, written to a CSV file and optionally copied to S3.

An owner id is required before anything is uploaded. It comes from --owner-id, OWNER_ID,
the owner of a key created with --derive-key, or the account behind the cookie
(ROBLOSECURITY or --cookie-file). Without one the command stops before the first upload.

--timeout covers listing sources, key creation and the S3 report copy. The uploads
themselves have no overall deadline; each request is limited by HTTP_TIMEOUT.`,
	Example: `  # Upload a folder using file names
  decalup upload ./decals

  # Number uploads and skip the prompt
  decalup upload ./decals --naming pattern --pattern "Sign {index}" --confirm

  # Upload from URLs with explicit names
  decalup upload --url https://example.com/a.png --url https://example.com/b.png \
    --naming list --names-file names.txt

  # Upload a bucket folder and keep the report in S3
  decalup upload --s3-prefix decals/spring --report-s3-key reports/

  # Create a key from the cookie first
  decalup upload ./decals --derive-key

  # Show what would be uploaded
  decalup upload ./decals --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		runUpload(cmd, args)
	},
}

func runUpload(cmd *cobra.Command, args []string) {
	confirm, _ := cmd.Flags().GetBool("confirm")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// --timeout bounds the steps around the batch. The batch itself has no deadline;
	// each request is bounded by HTTP_TIMEOUT instead.
	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	batchCfg, err := buildBatchConfig(cmd)
	if err != nil {
		printError(cmd, err)
		return
	}

	var store *s3client.Client
	items, err := collectItems(ctx, cmd, args, &store)
	if err != nil {
		printError(cmd, err)
		return
	}
	if len(items) == 0 {
		printError(cmd, batch.ErrNoItems)
		return
	}

	if dryRun {
		printJSON(cmd, createDryRunResult(batchCfg, items))
		return
	}

	if err := resolveCredentials(ctx, cmd, &batchCfg); err != nil {
		printError(cmd, err)
		return
	}
	if err := batch.Validate(batchCfg, items); err != nil {
		printError(cmd, err)
		return
	}

	if !confirm {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Upload operation summary:\n")
		fmt.Fprintf(out, "  Images: %d\n", len(items))
		fmt.Fprintf(out, "  Owner: %s\n", batchCfg.OwnerID)
		fmt.Fprintf(out, "  Naming: %s\n", batchCfg.Naming.Kind)
		fmt.Fprintf(out, "  Content type: %s\n", batchCfg.ContentType)
		fmt.Fprintf(out, "  Delay: %s\n", batchCfg.Delay)
		for _, w := range batchCfg.Naming.Check(len(items)) {
			fmt.Fprintf(out, "  Warning: %s\n", w)
		}

		if !askConfirmation(cmd, "Continue with upload?") {
			fmt.Fprintln(out, "Upload cancelled.")
			return
		}
	}

	if isVerbose(cmd) {
		cmd.PrintErrf("Starting upload of %d images...\n", len(items))
	}

	opts := []batch.Option{batch.WithProgress(func(index, total int, result models.UploadResult) {
		event := log.Info()
		if !result.Success {
			event = log.Warn().Str("error", result.Error)
		}
		event.Msgf("[%d/%d] %s", index+1, total, result.File)
	})}
	if !confirm {
		opts = append(opts, batch.WithWarningsShown())
	}

	uploader := assetapi.NewClient(newHTTPClient(), cfg.OpenCloudURL)
	orchestrator := batch.New(uploader, opts...)

	result, err := orchestrator.Run(context.Background(), batchCfg, items)
	if err != nil {
		printError(cmd, err)
		return
	}

	linkTemplate, _ := cmd.Flags().GetString("link-template")
	if linkTemplate == "" {
		linkTemplate = cfg.LinkTemplate
	}
	errOut := cmd.ErrOrStderr()
	reporter := report.Reporter{
		LinkTemplate: linkTemplate,
		Color:        errOut == os.Stderr && term.IsTerminal(int(os.Stderr.Fd())),
	}
	if err := reporter.RenderTable(errOut, result.Results); err != nil {
		log.Warn().Err(err).Msg("Failed to render report table")
	}

	exportCtx, cancelExport := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancelExport()
	if err := exportReport(exportCtx, cmd, reporter, result, &store); err != nil {
		printError(cmd, err)
		return
	}

	printJSON(cmd, result)
}

func buildBatchConfig(cmd *cobra.Command) (batch.Config, error) {
	description, _ := cmd.Flags().GetString("description")
	delay, _ := cmd.Flags().GetFloat64("delay")
	contentTypeFlag, _ := cmd.Flags().GetString("content-type")
	convert, _ := cmd.Flags().GetBool("convert")
	maxDimension, _ := cmd.Flags().GetInt("max-dimension")

	contentType, err := assetapi.ContentType(contentTypeFlag)
	if err != nil {
		return batch.Config{}, err
	}
	if delay < 0 {
		return batch.Config{}, fmt.Errorf("--delay must not be negative")
	}
	if maxDimension < 0 {
		return batch.Config{}, fmt.Errorf("--max-dimension must not be negative")
	}

	strategy, err := buildNamingStrategy(cmd)
	if err != nil {
		return batch.Config{}, err
	}

	return batch.Config{
		Description: description,
		ContentType: contentType,
		Naming:      strategy,
		Delay:       time.Duration(delay * float64(time.Second)),
		Prepare: imageprep.Options{
			ContentType:  contentType,
			Convert:      convert,
			MaxDimension: maxDimension,
		},
	}, nil
}

func buildNamingStrategy(cmd *cobra.Command) (naming.Strategy, error) {
	method, _ := cmd.Flags().GetString("naming")
	kind, err := naming.ParseKind(method)
	if err != nil {
		return naming.Strategy{}, err
	}

	switch kind {
	case naming.Pattern:
		pattern, _ := cmd.Flags().GetString("pattern")
		return naming.WithPattern(pattern), nil
	case naming.ExplicitList:
		namesFile, _ := cmd.Flags().GetString("names-file")
		if namesFile == "" {
			return naming.Strategy{}, fmt.Errorf("--naming list needs --names-file")
		}
		data, err := os.ReadFile(namesFile)
		if err != nil {
			return naming.Strategy{}, fmt.Errorf("failed to read names file: %w", err)
		}
		return naming.WithNames(naming.ParseNames(string(data))), nil
	default:
		return naming.SourceName(), nil
	}
}

// collectItems orders local paths first, then URLs, then bucket objects.
func collectItems(ctx context.Context, cmd *cobra.Command, args []string, store **s3client.Client) ([]source.Item, error) {
	items, err := source.FromPaths(args)
	if err != nil {
		return nil, err
	}

	urls, _ := cmd.Flags().GetStringArray("url")
	urlFile, _ := cmd.Flags().GetString("url-file")
	if urlFile != "" {
		data, err := os.ReadFile(urlFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read URL file: %w", err)
		}
		urls = append(urls, source.ParseURLList(string(data))...)
	}
	items = append(items, source.FromURLs(newHTTPClient(), urls)...)

	if cmd.Flags().Changed("s3-prefix") {
		prefix, _ := cmd.Flags().GetString("s3-prefix")
		client, err := getStore(ctx, store)
		if err != nil {
			return nil, err
		}
		objects, err := client.ListImages(ctx, prefix)
		if err != nil {
			return nil, err
		}
		items = append(items, source.FromObjects(client, client.Bucket(), objects)...)
	}

	return items, nil
}

func getStore(ctx context.Context, store **s3client.Client) (*s3client.Client, error) {
	if *store != nil {
		return *store, nil
	}
	client, err := s3client.New(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	*store = client
	return client, nil
}

// resolveCredentials fills in the access key and owner id. A derived key brings its owner;
// otherwise a configured cookie is used to look the owner up.
func resolveCredentials(ctx context.Context, cmd *cobra.Command, batchCfg *batch.Config) error {
	batchCfg.AccessKey = getAPIKey(cmd)

	ownerID, _ := cmd.Flags().GetString("owner-id")
	if ownerID == "" {
		ownerID = cfg.OwnerID
	}

	deriveKey, _ := cmd.Flags().GetBool("derive-key")
	if deriveKey {
		cookie, err := getCookie(cmd, true)
		if err != nil {
			return err
		}
		key, err := newBootstrapper().DeriveAccessKey(ctx, cookie)
		if err != nil {
			return err
		}
		log.Info().Str("name", key.Name).Msg("Using a newly created API key")
		batchCfg.AccessKey = key.Secret
		if ownerID == "" {
			ownerID = key.OwnerID
		}
	}

	if ownerID == "" && batchCfg.AccessKey != "" {
		cookie, err := getCookie(cmd, false)
		if err != nil {
			return err
		}
		if cookie != "" {
			identity, err := newBootstrapper().FetchIdentity(ctx, cookie)
			if err != nil {
				return err
			}
			ownerID = strconv.FormatInt(identity.ID, 10)
			log.Info().Str("ownerId", ownerID).Msg("Owner id taken from the session cookie")
		}
	}

	batchCfg.OwnerID = ownerID
	return nil
}

func exportReport(ctx context.Context, cmd *cobra.Command, reporter report.Reporter, result *models.BatchReport, store **s3client.Client) error {
	reportPath, _ := cmd.Flags().GetString("report")
	reportS3Key, _ := cmd.Flags().GetString("report-s3-key")
	if reportPath == "" && reportS3Key == "" {
		return nil
	}

	data, err := reporter.CSV(result.Results)
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		result.ReportPath = reportPath
	}

	if reportS3Key != "" {
		client, err := getStore(ctx, store)
		if err != nil {
			return err
		}
		destination, name := reportDestination(reportS3Key, result)
		stored, err := client.UploadReport(ctx, destination, name, data)
		if err != nil {
			return err
		}
		result.ReportS3Key = stored
	}

	return nil
}

// reportDestination splits --report-s3-key into a folder and a file name.
// A key ending in "/" is a folder and gets a generated name.
func reportDestination(reportS3Key string, result *models.BatchReport) (string, string) {
	if strings.HasSuffix(reportS3Key, "/") {
		return reportS3Key, utils.ReportFileName(result.RunID, result.StartedAt)
	}
	return "", reportS3Key
}

func createDryRunResult(batchCfg batch.Config, items []source.Item) interface{} {
	var warnings []string
	for _, w := range batchCfg.Naming.Check(len(items)) {
		warnings = append(warnings, w.String())
	}

	return map[string]interface{}{
		"items":          batch.Plan(batchCfg, items),
		"total_files":    len(items),
		"naming":         batchCfg.Naming.Kind.String(),
		"content_type":   batchCfg.ContentType,
		"delay":          batchCfg.Delay.String(),
		"warnings":       warnings,
		"operation_time": utils.FormatTime(time.Now()),
		"dry_run":        true,
	}
}

func init() {
	uploadCmd.Flags().StringArray("url", nil, "Image URL to upload (repeatable)")
	uploadCmd.Flags().String("url-file", "", "File with one image URL per line")
	uploadCmd.Flags().String("s3-prefix", "", "Upload the images under this prefix of the configured bucket")
	uploadCmd.Flags().String("naming", "filename", "Naming method: filename, pattern or list")
	uploadCmd.Flags().String("pattern", "My Decal {index}", "Name pattern, {index} is the 1-based position")
	uploadCmd.Flags().String("names-file", "", "File with one name per line (for --naming list)")
	uploadCmd.Flags().String("description", "", "Description for every uploaded decal")
	uploadCmd.Flags().Float64("delay", 3, "Seconds to wait between uploads, 0 disables")
	uploadCmd.Flags().String("content-type", "png", "Declared image type: png or jpeg")
	uploadCmd.Flags().Bool("convert", false, "Re-encode images that are not already the declared type")
	uploadCmd.Flags().Int("max-dimension", 0, "Shrink images so neither side exceeds this many pixels")
	uploadCmd.Flags().String("owner-id", "", "Override OWNER_ID from config")
	uploadCmd.Flags().Bool("derive-key", false, "Create an API key from the session cookie before uploading")
	uploadCmd.Flags().String("report", defaultReportPath, "CSV report path, empty to skip")
	uploadCmd.Flags().String("report-s3-key", "", "Also store the CSV report in S3 (a trailing / generates the file name)")
	uploadCmd.Flags().String("link-template", "", "Asset link template, {id} is the asset id (default from config)")
	uploadCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	uploadCmd.Flags().Bool("dry-run", false, "Show what would be uploaded without uploading")
	uploadCmd.Flags().Int("timeout", 600, "Timeout in seconds for listing, key creation and report export; uploads are bounded per request by HTTP_TIMEOUT")
}
