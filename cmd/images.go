package cmd

import (
	"context"
	"time"

	"decalup/internal/models"
	"decalup/internal/s3client"
	"decalup/pkg/utils"

	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images [prefix]",
	Short: "List the bucket images an upload would pick up",
	Long: `List the image objects under a prefix of the configured S3 bucket.

These are the objects "decalup upload --s3-prefix" would upload, in the same order.
Non-image keys are left out.`,
	Example: `  # List images at the bucket root
  decalup images

  # List images under a folder
  decalup images decals/spring`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runImages(cmd, args)
	},
}

func runImages(cmd *cobra.Command, args []string) {
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	client, err := s3client.New(ctx, cfg.S3)
	if err != nil {
		printError(cmd, err)
		return
	}

	if isVerbose(cmd) {
		cmd.PrintErrf("Listing images in %s under %q\n", client.Bucket(), prefix)
	}

	objects, err := client.ListImages(ctx, prefix)
	if err != nil {
		printError(cmd, err)
		return
	}

	printJSON(cmd, summarizeObjects(client.Bucket(), prefix, objects))
}

func summarizeObjects(bucket, prefix string, objects []models.ObjectInfo) *models.ImageListing {
	listing := &models.ImageListing{
		BucketName: bucket,
		Prefix:     prefix,
		Objects:    objects,
		TotalFiles: len(objects),
	}
	for _, obj := range objects {
		listing.TotalSizeBytes += obj.Size
		if obj.LastModified.After(listing.LastModified) {
			listing.LastModified = obj.LastModified
		}
	}
	listing.TotalSizeHuman = utils.FormatBytes(listing.TotalSizeBytes)
	return listing
}

func init() {
	imagesCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
