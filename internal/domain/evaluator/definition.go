package evaluator

// Definition is host-supplied rule behavior. Require declares the matchers
// that gate Run; Run records findings through the rule's Hint, Warning and
// Error methods. An error from Run is a fault and aborts the evaluation.
type Definition interface {
	Name() string
	Description() string
	IssueSource() string
	Require(r *Rule)
	Run(r *Rule) error
}

// PackageDefinition is rule behavior applied once per package and once per
// project of the result.
type PackageDefinition interface {
	Name() string
	Description() string
	IssueSource() string
	Require(r *PackageRule)
	Run(r *PackageRule) error
}

// LicenseDefinition is rule behavior applied once per license of a package.
type LicenseDefinition interface {
	Name() string
	Description() string
	Require(r *LicenseRule)
	Run(r *LicenseRule) error
}

// Func adapts functions to a Definition. Gate may be nil.
type Func struct {
	RuleName string
	Desc     string
	Source   string
	Gate     func(r *Rule)
	Body     func(r *Rule) error
}

func (f Func) Name() string        { return f.RuleName }
func (f Func) Description() string { return f.Desc }
func (f Func) IssueSource() string { return sourceOr(f.Source, f.RuleName) }

func (f Func) Require(r *Rule) {
	if f.Gate != nil {
		f.Gate(r)
	}
}

func (f Func) Run(r *Rule) error {
	if f.Body == nil {
		return nil
	}
	return f.Body(r)
}

// PackageFunc adapts functions to a PackageDefinition. Gate may be nil.
type PackageFunc struct {
	RuleName string
	Desc     string
	Source   string
	Gate     func(r *PackageRule)
	Body     func(r *PackageRule) error
}

func (f PackageFunc) Name() string        { return f.RuleName }
func (f PackageFunc) Description() string { return f.Desc }
func (f PackageFunc) IssueSource() string { return sourceOr(f.Source, f.RuleName) }

func (f PackageFunc) Require(r *PackageRule) {
	if f.Gate != nil {
		f.Gate(r)
	}
}

func (f PackageFunc) Run(r *PackageRule) error {
	if f.Body == nil {
		return nil
	}
	return f.Body(r)
}

// LicenseFunc adapts functions to a LicenseDefinition. Gate may be nil.
type LicenseFunc struct {
	RuleName string
	Desc     string
	Gate     func(r *LicenseRule)
	Body     func(r *LicenseRule) error
}

func (f LicenseFunc) Name() string        { return f.RuleName }
func (f LicenseFunc) Description() string { return f.Desc }

func (f LicenseFunc) Require(r *LicenseRule) {
	if f.Gate != nil {
		f.Gate(r)
	}
}

func (f LicenseFunc) Run(r *LicenseRule) error {
	if f.Body == nil {
		return nil
	}
	return f.Body(r)
}

// ForEachPackage turns a package definition into a Definition that applies
// it to every project and every package of the result, projects first, each
// group in identifier order.
func ForEachPackage(def PackageDefinition) Definition {
	return packageDefinitions{def: def}
}

type packageDefinitions struct {
	def PackageDefinition
}

func (p packageDefinitions) Name() string        { return p.def.Name() }
func (p packageDefinitions) Description() string { return p.def.Description() }
func (p packageDefinitions) IssueSource() string { return p.def.IssueSource() }
func (p packageDefinitions) Require(*Rule)       {}

func (p packageDefinitions) Run(r *Rule) error {
	set := r.RuleSet()
	for _, project := range set.result.Projects {
		if err := set.evaluatePackage(p.def, project.ToPackage(), nil, true); err != nil {
			return err
		}
	}
	for _, pkg := range set.result.Packages {
		if err := set.evaluatePackage(p.def, pkg.Package, pkg.Curations, false); err != nil {
			return err
		}
	}
	return nil
}

func sourceOr(source, fallback string) string {
	if source != "" {
		return source
	}
	return fallback
}
