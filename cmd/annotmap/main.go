// Command annotmap inspects and repairs persisted map annotation documents.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alatreon/catamap-sub000/internal/annotation"
	"github.com/Alatreon/catamap-sub000/internal/store"
	"github.com/Alatreon/catamap-sub000/internal/version"
)

func usage() {
	fmt.Println("Usage: annotmap [-dir <path>] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  list              list persisted annotation documents")
	fmt.Println("  show <mapID>      print layers and annotation counts")
	fmt.Println("  validate <mapID>  check document structure, including the backup")
	fmt.Println("  vacuum <mapID>    drop degenerate drawings and rewrite the file")
	fmt.Println("  version           print build information")
	os.Exit(1)
}

func main() {
	dir := flag.String("dir", "", "Annotation data directory (default from preferences)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	dataDir := *dir
	if dataDir == "" {
		dataDir = dataDirFromPrefs()
	}

	st := store.New(dataDir, log)
	defer st.Close()

	var err error
	switch cmd, arg := flag.Arg(0), flag.Arg(1); cmd {
	case "list":
		err = list(dataDir)
	case "show":
		err = withDocument(st, arg, show)
	case "validate":
		err = validate(st, arg)
	case "vacuum":
		err = vacuum(st, arg)
	case "version":
		fmt.Printf("annotmap %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "annotmap: %v\n", err)
		os.Exit(1)
	}
}

// dataDirFromPrefs resolves the data directory the same way the
// application does: the storage.dir preference, falling back to the
// default location under the user config directory.
func dataDirFromPrefs() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	fallback := filepath.Join(base, "catamap", "annotations")

	v := viper.New()
	v.SetConfigFile(filepath.Join(base, "catamap", "preferences.json"))
	v.SetDefault("storage.dir", fallback)
	_ = v.ReadInConfig()
	return v.GetString("storage.dir")
}

func withDocument(st *store.Store, mapID string, fn func(*annotation.Document) error) error {
	if mapID == "" {
		usage()
	}
	doc, err := st.Load(mapID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("no annotations for map %q", mapID)
	}
	return fn(doc)
}

func list(dataDir string) error {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No annotation data.")
			return nil
		}
		return err
	}

	count := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".bak") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fmt.Printf("%-40s %8d bytes\n", strings.TrimSuffix(name, ".json"), info.Size())
		count++
	}
	fmt.Printf("%d document(s) in %s\n", count, dataDir)
	return nil
}

func show(doc *annotation.Document) error {
	fmt.Printf("Map:      %s\n", doc.MapID)
	fmt.Printf("Version:  %d\n", doc.Version)
	fmt.Printf("Modified: %d\n", doc.LastModified)
	fmt.Printf("Layers:   %d (%d visible)\n\n", len(doc.Layers), doc.VisibleCount())

	for _, l := range doc.Layers {
		marker := " "
		if l.ID == doc.ActiveLayerID {
			marker = "*"
		}
		visibility := "visible"
		if !l.Visible {
			visibility = "hidden"
		}
		texts, drawings := 0, 0
		for _, a := range l.Annotations {
			switch a.Kind {
			case annotation.KindText:
				texts++
			case annotation.KindDrawing:
				drawings++
			}
		}
		fmt.Printf("%s [%d] %-30s %-8s %d text, %d drawing\n",
			marker, l.ZIndex, l.Name, visibility, texts, drawings)
	}
	return nil
}

func validate(st *store.Store, mapID string) error {
	if mapID == "" {
		usage()
	}
	if !st.HasData(mapID) {
		return fmt.Errorf("no annotations for map %q", mapID)
	}

	doc, err := st.Load(mapID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("map %q: neither primary nor backup file is usable", mapID)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("map %q: %w", mapID, err)
	}
	fmt.Printf("map %q: ok (%d layers)\n", mapID, len(doc.Layers))
	return nil
}

// vacuum removes drawings that can no longer render (fewer than two
// points) and rewrites the document synchronously.
func vacuum(st *store.Store, mapID string) error {
	return withDocument(st, mapID, func(doc *annotation.Document) error {
		dropped := 0
		for li := range doc.Layers {
			kept := doc.Layers[li].Annotations[:0]
			for _, a := range doc.Layers[li].Annotations {
				if a.Kind == annotation.KindDrawing && len(a.Drawing.Points) < 2 {
					dropped++
					continue
				}
				kept = append(kept, a)
			}
			doc.Layers[li].Annotations = kept
		}
		if dropped == 0 {
			fmt.Println("Nothing to vacuum.")
			return nil
		}
		if err := st.SaveImmediate(doc.MapID, doc); err != nil {
			return err
		}
		fmt.Printf("Dropped %d degenerate drawing(s).\n", dropped)
		return nil
	})
}
