package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/future-architect/qurantag"
	"github.com/future-architect/qurantag/config"
	_ "github.com/future-architect/qurantag/nlp/arabic"
	"go.uber.org/zap"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/docstore/memdocstore"
	_ "gocloud.dev/docstore/mongodocstore"
	_ "gocloud.dev/pubsub/mempubsub"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	configFile  = kingpin.Flag("config", "INI configuration file").String()
	artifactURL = kingpin.Flag("artifact-url", "Bucket URL of the pipeline artifacts").String()
	documentURL = kingpin.Flag("document-url", "Docstore URL of the published corpus").String()
	eventURL    = kingpin.Flag("event-url", "Pubsub topic URL of shard events").String()
	shardCount  = kingpin.Flag("shards", "Shard count").Int()
	revision    = kingpin.Flag("revision", "Tagger revision of the classify stage").String()
	overlayFile = kingpin.Flag("overlay", "YAML lexicon overlay").ExistingFile()
	force       = kingpin.Flag("force", "Overwrite existing artifacts").Bool()
	verbose     = kingpin.Flag("verbose", "Human readable debug logging").Short('v').Bool()
	asJSON      = kingpin.Flag("json", "Print reports as JSON").Bool()

	splitCmd = kingpin.Command("split", "Split words-qu.json into shard files")

	classifyCmd    = kingpin.Command("classify", "Tag shard files")
	classifyShards = classifyCmd.Arg("SHARD", "Shard numbers (default: all)").Ints()

	reclassifyCmd    = kingpin.Command("reclassify", "Retry unresolved entries with the reclassify revision")
	reclassifyShards = reclassifyCmd.Arg("SHARD", "Shard numbers (default: all)").Ints()

	mergeCmd          = kingpin.Command("merge", "Align tagged shards with words-ref.json")
	mergeStore        = mergeCmd.Flag("store", "Publish the unique view to the corpus store").Bool()
	mergeExport       = mergeCmd.Flag("export", "Write a gob snapshot of the corpus store").String()
	mergeReadingOrder = mergeCmd.Flag("reading-order", "Build the sequential view from the unique view").Bool()

	runCmd          = kingpin.Command("run", "Split, classify, reclassify and merge")
	runStore        = runCmd.Flag("store", "Publish the unique view to the corpus store").Bool()
	runReadingOrder = runCmd.Flag("reading-order", "Build the sequential view from the unique view").Bool()

	statsCmd = kingpin.Command("stats", "Print corpus statistics")

	tagCmd  = kingpin.Command("tag", "Tag a single word")
	tagWord = tagCmd.Arg("WORD", "Surface form").Required().String()
	tagRoot = tagCmd.Arg("ROOT", "Root").String()

	lookupCmd   = kingpin.Command("lookup", "Query the corpus store")
	lookupRoot  = lookupCmd.Flag("root", "List every word of a root").String()
	lookupWords = lookupCmd.Arg("WORDS", "Words").Strings()
)

func loadConfig() (*config.Config, error) {
	c, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *artifactURL != "" {
		c.ArtifactURL = *artifactURL
	}
	if *documentURL != "" {
		c.DocumentURL = *documentURL
	}
	if *eventURL != "" {
		c.EventURL = *eventURL
	}
	if *shardCount != 0 {
		c.Shards = *shardCount
	}
	if *revision != "" {
		c.Revision = *revision
	}
	if *overlayFile != "" {
		c.Overlay = *overlayFile
	}
	c.Force = c.Force || *force
	c.Verbose = c.Verbose || *verbose
	return c, nil
}

func openPipeline(ctx context.Context) (*qurantag.Pipeline, *zap.Logger, error) {
	c, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.Logger()
	if err != nil {
		return nil, nil, err
	}
	opt, err := c.Option(logger)
	if err != nil {
		return nil, nil, err
	}
	p, err := qurantag.NewPipeline(ctx, opt)
	if err != nil {
		return nil, nil, err
	}
	return p, logger, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStage(report *qurantag.StageReport) {
	if report == nil {
		return
	}
	if *asJSON {
		printJSON(report)
		return
	}
	color.Blue("# %s (revision=%s, run=%s)\n", report.Stage, report.Revision, report.RunID)
	for _, shard := range report.Shards {
		if shard.Skipped {
			color.Yellow("  shard %02d: skipped (%s)\n", shard.Shard, shard.Key)
			continue
		}
		if shard.Kept {
			color.Cyan("  shard %02d: kept\n", shard.Shard)
			continue
		}
		fmt.Printf("  shard %02d: %d entries, %d resolved, %d partial, %d unknown\n",
			shard.Shard, shard.Total, shard.Reclassified, shard.Partial, shard.StillUnknown)
	}
	totals := report.Totals()
	color.Green("  total: %d entries, %d resolved, %d partial, %d unknown, %d ambiguous\n",
		totals.Total, totals.Reclassified, totals.Partial, totals.StillUnknown, totals.Ambiguous)
}

func printMerge(result *qurantag.MergeResult) {
	if result == nil {
		return
	}
	if *asJSON {
		printJSON(result)
		return
	}
	color.Blue("# merge (run=%s)\n", result.RunID)
	if result.ReferenceMissing {
		color.Red("  %s is missing, nothing written\n", qurantag.ReferenceKey)
		return
	}
	for _, report := range []qurantag.MergeReport{result.Unique, result.Sequential} {
		c := color.New(color.FgGreen)
		if report.Mismatch > 0 {
			c = color.New(color.FgYellow)
		}
		c.Printf("  %s: %d records (tagged=%d, positions=%d, mismatch=%d)\n",
			report.Mode, report.Records, report.Tagged, report.Positions, report.Mismatch)
	}
	for _, shard := range result.Substituted {
		color.Yellow("  shard %02d: untagged batch used\n", shard)
	}
	for _, key := range result.Skipped {
		color.Red("  skipped: %s\n", key)
	}
	if result.Published > 0 {
		color.Cyan("  published %d words\n", result.Published)
	}
}

func printCounts(title string, counts []qurantag.Count) {
	color.Blue("## %s\n", title)
	for _, c := range counts {
		fmt.Printf("  %6d  %s\n", c.Count, c.Key)
	}
}

func printSummary(summary qurantag.Summary) {
	if *asJSON {
		printJSON(summary)
		return
	}
	color.Blue("# corpus\n")
	fmt.Printf("  words: %d (unique %d), roots: %d\n", summary.TotalWords, summary.UniqueWords, summary.UniqueRoots)
	rate := color.GreenString("%.2f%%", summary.SuccessRate())
	fmt.Printf("  entries: %d, resolved: %d, needs review: %d, ambiguous: %d, success: %s\n",
		summary.Entries, summary.Resolved, summary.NeedsReview, summary.Ambiguous, rate)
	for _, shard := range summary.Shards {
		fmt.Printf("  shard %02d: %d/%d fully classified (%s)\n", shard.Shard, shard.FullyClassified, shard.Total, shard.Key)
	}
	printCounts("top roots", summary.TopRoots)
	printCounts("top words", summary.TopWords)
	printCounts("top morphemes", summary.TopMorphemes)
	printCounts("top tag pairs", summary.TopTagPairs)
}

func printWord(word *qurantag.WordRecord) {
	color.Blue("# %s\n", word.Word)
	fmt.Printf("  root: %s, tags: %s, occurrences: %d\n", word.Root, word.Tags, word.OccurrenceCount)
	positions := make([]string, len(word.Positions))
	for i, pos := range word.Positions {
		positions[i] = pos.String()
	}
	color.Cyan("  %s\n", strings.Join(positions, " "))
}

func merge(ctx context.Context, p *qurantag.Pipeline) error {
	result, err := p.Merge(ctx, qurantag.MergeOption{Store: *mergeStore, ReadingOrder: *mergeReadingOrder})
	printMerge(result)
	if err != nil || *mergeExport == "" {
		return err
	}
	f, err := os.Create(*mergeExport)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Export(ctx, f)
}

func tag(p *qurantag.Pipeline) error {
	res := p.Tagger().Tag(*tagWord, *tagRoot)
	if *asJSON {
		return printJSON(res)
	}
	c := color.New(color.FgGreen)
	if !res.Resolved() {
		c = color.New(color.FgRed)
	}
	c.Printf("%s\t%s\t%s\n", res.Surface, res.Root, res.TagString())
	fmt.Printf("  revision=%s rule=%s ambiguous=%s\n", p.Tagger().Revision(), res.Rule, strconv.FormatBool(res.Ambiguous))
	return nil
}

func lookup(ctx context.Context, p *qurantag.Pipeline) error {
	if *lookupRoot != "" {
		words, err := p.ByRoot(ctx, *lookupRoot)
		if err != nil {
			return err
		}
		if len(words) == 0 {
			color.Cyan("No Match")
		}
		for _, word := range words {
			printWord(word)
		}
		return nil
	}
	words, err := p.Lookup(ctx, *lookupWords...)
	if err != nil {
		return err
	}
	for i, word := range words {
		if word == nil {
			color.Red("# %s: not found\n", (*lookupWords)[i])
			continue
		}
		printWord(word)
	}
	return nil
}

func main() {
	command := kingpin.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, logger, err := openPipeline(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open pipeline error: %s\n", err.Error())
		os.Exit(1)
	}
	defer logger.Sync()

	switch command {
	case splitCmd.FullCommand():
		var report *qurantag.StageReport
		report, err = p.Split(ctx)
		printStage(report)
	case classifyCmd.FullCommand():
		var report *qurantag.StageReport
		report, err = p.Classify(ctx, *classifyShards...)
		printStage(report)
	case reclassifyCmd.FullCommand():
		var report *qurantag.StageReport
		report, err = p.Reclassify(ctx, *reclassifyShards...)
		printStage(report)
	case mergeCmd.FullCommand():
		err = merge(ctx, p)
	case runCmd.FullCommand():
		var report *qurantag.RunReport
		report, err = p.Run(ctx, qurantag.MergeOption{Store: *runStore, ReadingOrder: *runReadingOrder})
		if report != nil {
			printStage(report.Split)
			printStage(report.Classify)
			printStage(report.Reclassify)
			printMerge(report.Merge)
		}
	case statsCmd.FullCommand():
		var summary qurantag.Summary
		summary, err = p.Stats(ctx)
		if err == nil {
			printSummary(summary)
		}
	case tagCmd.FullCommand():
		err = tag(p)
	case lookupCmd.FullCommand():
		err = lookup(ctx, p)
	}
	if cerr := p.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %s\n", command, err.Error())
		os.Exit(1)
	}
}
