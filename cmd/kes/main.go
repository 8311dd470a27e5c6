// Kestrel CLI - inspect and snapshot class-metadata images.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/kestrelvm/kestrel/manifest"
	"github.com/kestrelvm/kestrel/vm"
	"github.com/kestrelvm/kestrel/vm/image"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	inspectPath := flag.String("inspect", "", "Inspect a class-metadata image file")
	snapshot := flag.Bool("snapshot", false, "Snapshot a fresh VM to the manifest's image output")
	pool := flag.Bool("pool", false, "Dump the canonical string pool of a fresh VM")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kes [options]\n\n")
		fmt.Fprintf(os.Stderr, "Inspects Kestrel class-metadata images and VM state.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  kes -inspect kestrel.image   # List classes in an image\n")
		fmt.Fprintf(os.Stderr, "  kes -snapshot                # Write a fresh VM image\n")
		fmt.Fprintf(os.Stderr, "  kes -pool                    # Dump the preloaded string pool\n")
	}
	flag.Parse()

	cfg := vm.Config{}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	if m != nil {
		cfg.MaxFrameDepth = m.Interpreter.MaxFrameDepth
		cfg.MaxInstances = m.Interpreter.MaxInstances
		cfg.PreloadNames = m.Pool.Preload
		if *verbose {
			fmt.Printf("Using manifest in %s\n", m.Dir)
		}
	}

	switch {
	case *inspectPath != "":
		inspect(*inspectPath, *verbose)
	case *snapshot:
		writeSnapshot(m, cfg, *verbose)
	case *pool:
		dumpPool(cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func inspect(path string, verbose bool) {
	commonlog.NewInfoMessage(0, "Kestrel image inspect: "+path)

	img, err := image.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
		os.Exit(1)
	}
	if err := image.Verify(img); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Image format v%d: %d classes, %d pool strings\n",
		img.Version, len(img.Classes), len(img.Pool))
	for _, c := range img.Classes {
		flags := ""
		if c.Sealed {
			flags += " sealed"
		}
		if c.Proxy {
			flags += " proxy"
		}
		fmt.Printf("  %s (super=%s)%s\n", c.Name, superName(c), flags)
		if verbose {
			for _, iv := range c.InstVars {
				fmt.Printf("    ivar %s\n", iv)
			}
			for _, md := range c.Methods {
				fmt.Printf("    method %s\n", md.Name)
			}
		}
	}
}

func superName(c image.ClassDef) string {
	if c.Superclass == "" {
		return "<root>"
	}
	return c.Superclass
}

func writeSnapshot(m *manifest.Manifest, cfg vm.Config, verbose bool) {
	out := "kestrel.image"
	if m != nil {
		out = m.ImagePath()
	}
	commonlog.NewInfoMessage(0, "Kestrel snapshot: "+out)

	v := vm.NewVMWithConfig(cfg)
	img := image.Snapshot(v)
	if err := image.WriteFile(out, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing image: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Wrote %s (%d classes, %d pool strings)\n", out, len(img.Classes), len(img.Pool))
	}
}

func dumpPool(cfg vm.Config) {
	v := vm.NewVMWithConfig(cfg)
	all := v.Strings.All()

	// The ASCII region prints poorly raw; summarize it and list the rest.
	fmt.Printf("%d interned strings (first %d are single ASCII code points)\n",
		len(all), 0x80)
	rest := all[0x80:]
	sorted := make([]string, len(rest))
	copy(sorted, rest)
	sort.Strings(sorted)
	for _, s := range sorted {
		fmt.Printf("  %q\n", s)
	}
}
