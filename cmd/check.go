package cmd

import (
	"fmt"
	gotypelib "go/types"
	"log/slog"

	"github.com/denis-zhdanov/jenome/gotypes"
	"github.com/denis-zhdanov/jenome/internal/log"
	"github.com/denis-zhdanov/jenome/match"
	"github.com/denis-zhdanov/jenome/typespec"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	gopackages "golang.org/x/tools/go/packages"
)

// ErrNotCompliant reports a check that completed with a negative verdict;
// main maps it to a non-zero exit code.
var ErrNotCompliant = errors.New("candidate type is not compliant")

var CheckCmd = &cobra.Command{
	Use:          "check BaseType CandidateType",
	Short:        "Check whether one Go type may be used where another is expected",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
}

var (
	checkPattern *string
	checkStrict  *bool
	logLevel     *int
)

func init() {
	checkPattern = CheckCmd.Flags().StringP("package", "p", ".", "package pattern to load the types from")
	checkStrict = CheckCmd.Flags().BoolP("strict", "s", false, "require exact type identity instead of subtype compatibility")
	logLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func goLoadPkgsConfig() *gopackages.Config {
	return &gopackages.Config{
		Mode: gopackages.NeedName | gopackages.NeedImports | gopackages.NeedDeps | gopackages.NeedTypesInfo | gopackages.NeedTypes,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))

	pkgs, err := gopackages.Load(goLoadPkgsConfig(), *checkPattern)
	if err != nil {
		return fmt.Errorf("could not load packages for pattern %q: %w", *checkPattern, err)
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no packages matched pattern %q", *checkPattern)
	}

	baseObj, err := lookup(pkgs, args[0])
	if err != nil {
		return err
	}
	candidateObj, err := lookup(pkgs, args[1])
	if err != nil {
		return err
	}

	converter := gotypes.NewConverter(namedInterfaces(pkgs)...)
	base, err := converter.Convert(baseObj.Type())
	if err != nil {
		return fmt.Errorf("could not model base type %s: %w", args[0], err)
	}
	candidate, err := converter.Convert(candidateObj.Type())
	if err != nil {
		return fmt.Errorf("could not model candidate type %s: %w", args[1], err)
	}

	return checkCompliance(base, candidate, *checkStrict)
}

func checkCompliance(base, candidate typespec.TypeSpec, strict bool) error {
	matcher := match.NewCompositeMatcher()
	matched, err := matcher.MatchIn(match.NewContext(), base, candidate, strict)
	if err != nil {
		return err
	}
	if !matched {
		fmt.Printf("%s is NOT compliant with %s\n", candidate, base)
		return ErrNotCompliant
	}
	fmt.Printf("%s is compliant with %s\n", candidate, base)
	return nil
}

func lookup(pkgs []*gopackages.Package, name string) (gotypelib.Object, error) {
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		if obj := pkg.Types.Scope().Lookup(name); obj != nil {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("type %q not found in loaded packages", name)
}

// namedInterfaces collects every named interface in the loaded package
// scopes; the converter probes candidates against them so that interface
// satisfaction shows up as supertype edges.
func namedInterfaces(pkgs []*gopackages.Package) []*gotypelib.Named {
	var out []*gotypelib.Named
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*gotypelib.TypeName)
			if !ok || obj.IsAlias() {
				continue
			}
			named, ok := obj.Type().(*gotypelib.Named)
			if !ok {
				continue
			}
			if _, ok := named.Underlying().(*gotypelib.Interface); ok {
				out = append(out, named)
			}
		}
	}
	return out
}
