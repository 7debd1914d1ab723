package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pborges/galc"
	cupllang "github.com/pborges/galc/internal/cupl"
	"github.com/pborges/galc/internal/gal"
	"github.com/pborges/galc/internal/jed"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "-v":
		fmt.Println(galc.Version())
	case "build":
		if err := cmdBuild(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "devices":
		fmt.Println("g16v8")
		fmt.Println("g20v8")
		fmt.Println("g22v10")
		fmt.Println("g20ra10")
	case "version":
		fmt.Println(galc.Version())
	case "burn":
		if err := cmdBurn(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("galc - GAL/CUPL compiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  galc build <file.pld> -o <file.jed> [-fuse] [-pin] [-chip]")
	fmt.Println("  galc burn <file.jed|file.pld>")
	fmt.Println("  galc devices")
	fmt.Println("  galc version")
	fmt.Println("  galc -v")
}

type buildFlags struct {
	out      string
	genFuse  bool
	genPin   bool
	genChip  bool
}

func cmdBuild(args []string) error {
	bf, rest, err := parseBuildArgs(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("build requires a single .pld input")
	}
	inPath := rest[0]
	data, err := ioutil.ReadFile(inPath)
	if err != nil {
		return err
	}
	content, err := cupllang.Parse(data)
	if err != nil {
		return err
	}
	bp, err := gal.BlueprintFrom(content.GAL)
	if err != nil {
		return err
	}
	g, err := gal.BuildGAL(bp)
	if err != nil {
		return err
	}

	outPath := bf.out
	if outPath == "" {
		base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
		outPath = base + ".jed"
	}
	if err := writeJED(content, g, outPath); err != nil {
		return err
	}

	base := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	if bf.genFuse {
		if err := ioutil.WriteFile(base+".fus", []byte(gal.FuseListing(g, content.GAL.Pins)), 0644); err != nil {
			return err
		}
	}
	if bf.genPin {
		types := gal.OLMCPinTypes(bp)
		mode := detectModeForReport(g)
		if err := ioutil.WriteFile(base+".pin", []byte(gal.PinTable(g.Chip, content.GAL.Pins, mode, types)), 0644); err != nil {
			return err
		}
	}
	if bf.genChip {
		if err := ioutil.WriteFile(base+".chp", []byte(gal.ChipDiagram(g.Chip, content.GAL.Pins)), 0644); err != nil {
			return err
		}
	}
	return nil
}

// detectModeForReport recovers the Syn/AC0 mode bits BuildGAL already
// committed to the fuse map, for PinTable's clock/OE pin annotations.
func detectModeForReport(g *gal.GAL) gal.Mode {
	switch {
	case !g.Syn && g.AC0:
		return gal.ModeRegistered
	case g.Syn && g.AC0:
		return gal.ModeComplex
	default:
		return gal.ModeSimple
	}
}

func parseBuildArgs(args []string) (buildFlags, []string, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	outPath := fs.String("o", "", "output JED file")
	genFuse := fs.Bool("fuse", false, "also emit a .fus fuse-listing report")
	genPin := fs.Bool("pin", false, "also emit a .pin pin-usage report")
	genChip := fs.Bool("chip", false, "also emit a .chp chip-diagram report")
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-o" || arg == "--o" {
			if i+1 >= len(args) {
				return buildFlags{}, nil, errors.New("missing value for -o")
			}
			if err := fs.Set("o", args[i+1]); err != nil {
				return buildFlags{}, nil, err
			}
			i++
			continue
		}
		if strings.HasPrefix(arg, "-o=") {
			if err := fs.Set("o", strings.TrimPrefix(arg, "-o=")); err != nil {
				return buildFlags{}, nil, err
			}
			continue
		}
		if strings.HasPrefix(arg, "-") {
			if err := fs.Parse([]string{arg}); err != nil {
				return buildFlags{}, nil, err
			}
			continue
		}
		rest = append(rest, arg)
	}
	return buildFlags{out: *outPath, genFuse: *genFuse, genPin: *genPin, genChip: *genChip}, rest, nil
}

func buildJed(inPath, outPath string) error {
	data, err := ioutil.ReadFile(inPath)
	if err != nil {
		return err
	}
	content, err := cupllang.Parse(data)
	if err != nil {
		return err
	}
	bp, err := gal.BlueprintFrom(content.GAL)
	if err != nil {
		return err
	}
	g, err := gal.BuildGAL(bp)
	if err != nil {
		return err
	}
	return writeJED(content, g, outPath)
}

func writeJED(content cupllang.Content, g *gal.GAL, outPath string) error {
	jedText := jed.MakeJEDEC(jed.Config{
		SecurityBit: false,
		Header:      headerLines(content, g.Chip),
	}, g)
	return ioutil.WriteFile(outPath, []byte(jedText), 0644)
}

func cmdBurn(args []string) error {
	deviceOverride, rest, err := parseBurnArgs(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("burn requires a single .jed or .pld input")
	}
	inPath := rest[0]
	ext := strings.ToLower(filepath.Ext(inPath))
	jedPath := inPath
	tempDir := ""
	if ext == ".pld" {
		tempDir, err = os.MkdirTemp("", "galc-burn-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tempDir)
		base := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
		jedPath = filepath.Join(tempDir, base+".jed")
		if err := buildJed(inPath, jedPath); err != nil {
			return err
		}
	} else if ext != ".jed" {
		return errors.New("burn requires a .jed or .pld input")
	}
	data, err := ioutil.ReadFile(jedPath)
	if err != nil {
		return err
	}
	device := deviceOverride
	if device == "" {
		device, err = jedDeviceFromFile(data)
		if err != nil {
			return err
		}
	}
	cmd := exec.Command("minipro", "-p", device, "-w", jedPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

func parseBurnArgs(args []string) (string, []string, error) {
	fs := flag.NewFlagSet("burn", flag.ContinueOnError)
	device := fs.String("p", "", "minipro device name (override)")
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-p" || arg == "--p" || arg == "--device" {
			if i+1 >= len(args) {
				return "", nil, errors.New("missing value for -p")
			}
			if err := fs.Set("p", args[i+1]); err != nil {
				return "", nil, err
			}
			i++
			continue
		}
		if strings.HasPrefix(arg, "-p=") {
			if err := fs.Set("p", strings.TrimPrefix(arg, "-p=")); err != nil {
				return "", nil, err
			}
			continue
		}
		if strings.HasPrefix(arg, "--device=") {
			if err := fs.Set("p", strings.TrimPrefix(arg, "--device=")); err != nil {
				return "", nil, err
			}
			continue
		}
		if strings.HasPrefix(arg, "-") {
			if err := fs.Parse([]string{arg}); err != nil {
				return "", nil, err
			}
			continue
		}
		rest = append(rest, arg)
	}
	return *device, rest, nil
}

func jedDeviceFromFile(data []byte) (string, error) {
	s := string(data)
	s = strings.TrimPrefix(s, "\x02")
	if idx := strings.Index(s, "\x03"); idx >= 0 {
		s = s[:idx]
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "*") {
			break
		}
		if strings.HasPrefix(line, "Device") {
			v := strings.TrimSpace(strings.TrimPrefix(line, "Device"))
			if v == "" {
				return "", errors.New("JED device header is empty")
			}
			fields := strings.Fields(v)
			if len(fields) == 0 {
				return "", errors.New("JED device header is empty")
			}
			return fields[0], nil
		}
	}
	return "", errors.New("JED device header not found")
}

func headerLines(c cupllang.Content, chip gal.Chip) []string {
	lines := []string{
		fmt.Sprintf("galc            %s", galc.Version()),
		fmt.Sprintf("Device          %s", headerDeviceName(chip)),
	}
	keys := []string{"Name", "Partno", "Revision", "Date", "Designer", "Company", "Assembly", "Location"}
	for _, k := range keys {
		if v := strings.TrimSpace(c.Meta[k]); v != "" {
			lines = append(lines, fmt.Sprintf("%-15s %s", k, v))
		}
	}
	return lines
}

func headerDeviceName(chip gal.Chip) string {
	return strings.ToLower(strings.TrimPrefix(chip.Name(), "GAL"))
}
