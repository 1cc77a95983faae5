package catalog

import "github.com/monishjocata/Vendor-Check/internal/model"

// Builtin defect ids.
const (
	EvalInjection           = "eval-injection"
	SQLInjection            = "sql-injection"
	CommandInjection        = "command-injection"
	InsecureDeserialization = "insecure-deserialization"
	HardcodedCredentials    = "hardcoded-credentials"
	WeakCryptography        = "weak-cryptography"
	InsecureRandomness      = "insecure-randomness"
	PathTraversal           = "path-traversal"
	XMLExternalEntity       = "xml-external-entity"
	CredentialsInURL        = "credentials-in-url"
	AssertAccessControl     = "assert-access-control"

	UnsafeYAMLLoad             = "unsafe-yaml-load"
	TLSVerificationDisabled    = "tls-verification-disabled"
	VulnerablePinnedVersion    = "vulnerable-pinned-version"
	DebugModeEnabled           = "debug-mode-enabled"
	TemplateAutoescapeDisabled = "template-autoescape-disabled"
	DeprecatedModule           = "deprecated-module"

	BareExcept            = "bare-except"
	DivisionByZero        = "division-by-zero"
	MissingRequestTimeout = "missing-request-timeout"
	UnclosedResource      = "unclosed-resource"

	MutableDefaultArgument = "mutable-default-argument"
	InfiniteLoop           = "infinite-loop"
	LoopVariableShadowing  = "loop-variable-shadowing"
	ModifyDuringIteration  = "modify-during-iteration"
	GlobalMutableState     = "global-mutable-state"
	NaiveDatetime          = "naive-datetime"
	IncompleteLeapYear     = "incomplete-leap-year"
	SQLUnboundedWrite      = "sql-unbounded-write"

	StringConcatInLoop  = "string-concat-in-loop"
	RegexCompileInLoop  = "regex-compile-in-loop"
	QuadraticNestedLoop = "quadratic-nested-loop"
	ListMembershipScan  = "list-membership-scan"
	ListInsertFront     = "list-insert-front"
	UnmemoizedRecursion = "unmemoized-recursion"
	SQLSelectStar       = "sql-select-star"
	SQLLeadingWildcard  = "sql-leading-wildcard"
	SQLDeepPagination   = "sql-deep-pagination"

	WildcardImport         = "wildcard-import"
	MultipleImportsPerLine = "multiple-imports-per-line"
	NonConventionalNaming  = "non-conventional-naming"
	TooManyParameters      = "too-many-parameters"
	DeepNesting            = "deep-nesting"
)

// Category and severity values are illustrative defaults: the corpus the table
// was drawn from has no taxonomy of its own.
var builtinDefects = []model.DefectDefinition{
	// security-vulnerability
	{
		ID:          EvalInjection,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityCritical,
		Title:       "Code injection via eval/exec",
		Description: "eval() or exec() is called on a non-literal argument, so caller-controlled text is executed as code.",
	},
	{
		ID:          SQLInjection,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityCritical,
		Title:       "SQL built by string interpolation",
		Description: "A SQL statement is assembled with f-strings, %-formatting, .format() or concatenation instead of bound parameters.",
	},
	{
		ID:          CommandInjection,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityCritical,
		Title:       "Shell command injection",
		Description: "A subprocess is started with shell=True or os.system/os.popen, letting shell metacharacters in arguments run commands.",
	},
	{
		ID:          InsecureDeserialization,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityCritical,
		Title:       "Insecure deserialization",
		Description: "pickle/marshal/shelve loading can execute arbitrary code when fed untrusted bytes.",
	},
	{
		ID:          HardcodedCredentials,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityCritical,
		Title:       "Hard-coded credentials",
		Description: "A password, secret, token or API key is assigned from a string literal in source code.",
	},
	{
		ID:          WeakCryptography,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityWarning,
		Title:       "Weak cryptographic hash",
		Description: "MD5 or SHA-1 is used; both are broken for collision resistance and unsuitable for passwords.",
	},
	{
		ID:          InsecureRandomness,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityWarning,
		Title:       "Predictable randomness for secrets",
		Description: "The random module generates a token, password or key; use the secrets module instead.",
	},
	{
		ID:          PathTraversal,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityWarning,
		Title:       "Path traversal",
		Description: "A filesystem path is built by interpolating an unvalidated name into a directory prefix.",
	},
	{
		ID:          XMLExternalEntity,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityWarning,
		Title:       "XML external entity / entity expansion",
		Description: "The standard library XML parsers are used on untrusted input without defusedxml.",
	},
	{
		ID:          CredentialsInURL,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityWarning,
		Title:       "Credentials embedded in URL",
		Description: "A connection URL carries a literal user:password pair, which leaks through logs and error messages.",
	},
	{
		ID:          AssertAccessControl,
		Category:    model.CategorySecurityVulnerability,
		Severity:    model.SeverityWarning,
		Title:       "assert used for access control",
		Description: "assert statements are stripped under python -O, silently removing the authorization check.",
	},

	// vulnerable-dependency
	{
		ID:          UnsafeYAMLLoad,
		Category:    model.CategoryVulnerableDependency,
		Severity:    model.SeverityCritical,
		Title:       "Unsafe YAML load",
		Description: "yaml.load() without a safe Loader can construct arbitrary Python objects (CVE-2017-18342).",
	},
	{
		ID:          TLSVerificationDisabled,
		Category:    model.CategoryVulnerableDependency,
		Severity:    model.SeverityCritical,
		Title:       "TLS certificate verification disabled",
		Description: "verify=False, CERT_NONE or an unverified SSL context turns off certificate checks.",
	},
	{
		ID:          VulnerablePinnedVersion,
		Category:    model.CategoryVulnerableDependency,
		Severity:    model.SeverityCritical,
		Title:       "Dependency pinned to a vulnerable release",
		Description: "A requirement pins a package to a version older than the first release fixing a published vulnerability.",
	},
	{
		ID:          DebugModeEnabled,
		Category:    model.CategoryVulnerableDependency,
		Severity:    model.SeverityWarning,
		Title:       "Framework debug mode enabled",
		Description: "An application server is started with debug=True, exposing an interactive debugger and stack traces.",
	},
	{
		ID:          TemplateAutoescapeDisabled,
		Category:    model.CategoryVulnerableDependency,
		Severity:    model.SeverityWarning,
		Title:       "Template autoescaping disabled",
		Description: "A template engine is configured with autoescape=False, making rendered output prone to XSS.",
	},
	{
		ID:          DeprecatedModule,
		Category:    model.CategoryVulnerableDependency,
		Severity:    model.SeverityWarning,
		Title:       "Deprecated or removed standard module",
		Description: "Modules such as imp, cgi, asyncore or telnetlib are deprecated, unmaintained or removed.",
	},

	// runtime-exception
	{
		ID:          BareExcept,
		Category:    model.CategoryRuntimeException,
		Severity:    model.SeverityWarning,
		Title:       "Bare except clause",
		Description: "except: without an exception class swallows every error, including KeyboardInterrupt and SystemExit.",
	},
	{
		ID:          DivisionByZero,
		Category:    model.CategoryRuntimeException,
		Severity:    model.SeverityCritical,
		Title:       "Division by literal zero",
		Description: "An expression divides or takes a modulus by the literal 0 and always raises ZeroDivisionError.",
	},
	{
		ID:          MissingRequestTimeout,
		Category:    model.CategoryRuntimeException,
		Severity:    model.SeverityWarning,
		Title:       "HTTP request without timeout",
		Description: "requests calls without timeout= can block forever on an unresponsive server.",
	},
	{
		ID:          UnclosedResource,
		Category:    model.CategoryRuntimeException,
		Severity:    model.SeverityWarning,
		Title:       "File opened outside a context manager",
		Description: "open() is assigned to a variable instead of used in a with block, so an exception leaks the handle.",
	},

	// logic-error
	{
		ID:          MutableDefaultArgument,
		Category:    model.CategoryLogicError,
		Severity:    model.SeverityWarning,
		Title:       "Mutable default argument",
		Description: "A list, dict or set default is created once and shared between calls.",
	},
	{
		ID:          InfiniteLoop,
		Category:    model.CategoryLogicError,
		Severity:    model.SeverityCritical,
		Title:       "Loop condition never updated",
		Description: "A while loop has no break/return and never assigns any variable its condition reads.",
	},
	{
		ID:          LoopVariableShadowing,
		Category:    model.CategoryLogicError,
		Severity:    model.SeverityWarning,
		Title:       "Loop variable shadows accumulator",
		Description: "A for loop rebinds a variable that was initialised earlier, discarding the accumulated value.",
	},
	{
		ID:          ModifyDuringIteration,
		Category:    model.CategoryLogicError,
		Severity:    model.SeverityWarning,
		Title:       "Collection modified while iterating",
		Description: "A loop removes from or inserts into the same list it iterates, skipping elements.",
	},
	{
		ID:          GlobalMutableState,
		Category:    model.CategoryLogicError,
		Severity:    model.SeverityWarning,
		Title:       "Global mutable state",
		Description: "A function rebinds a module-level variable through the global statement; not thread-safe.",
	},
	{
		ID:          NaiveDatetime,
		Category:    model.CategoryLogicError,
		Severity:    model.SeverityInfo,
		Title:       "Timezone-naive timestamp",
		Description: "datetime.now()/utcnow() without tz produces naive timestamps that differ across hosts.",
	},
	{
		ID:          IncompleteLeapYear,
		Category:    model.CategoryLogicError,
		Severity:    model.SeverityWarning,
		Title:       "Incomplete leap year rule",
		Description: "A leap year test checks divisibility by 4 but ignores the century rules.",
	},
	{
		ID:          SQLUnboundedWrite,
		Category:    model.CategoryLogicError,
		Severity:    model.SeverityCritical,
		Title:       "UPDATE/DELETE without WHERE",
		Description: "An embedded UPDATE or DELETE statement has no WHERE clause and rewrites the whole table.",
	},

	// performance-issue
	{
		ID:          StringConcatInLoop,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityWarning,
		Title:       "String concatenation in loop",
		Description: "Building a string with += inside a loop copies the buffer every iteration; use join.",
	},
	{
		ID:          RegexCompileInLoop,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityWarning,
		Title:       "Regex compiled inside loop",
		Description: "re.compile is called on every iteration instead of once outside the loop.",
	},
	{
		ID:          QuadraticNestedLoop,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityWarning,
		Title:       "Quadratic nested index loops",
		Description: "Two nested loops walk the same collection, comparing every pair of elements.",
	},
	{
		ID:          ListMembershipScan,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityInfo,
		Title:       "Membership test on a growing list",
		Description: "'not in' is checked against a list that is appended to, an O(n) scan where a set is O(1).",
	},
	{
		ID:          ListInsertFront,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityInfo,
		Title:       "Insertion at list front",
		Description: "list.insert(0, x) shifts every element; use collections.deque.",
	},
	{
		ID:          UnmemoizedRecursion,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityWarning,
		Title:       "Exponential recursion without memoization",
		Description: "A function calls itself more than once per invocation without a cache decorator.",
	},
	{
		ID:          SQLSelectStar,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityInfo,
		Title:       "SELECT * in embedded SQL",
		Description: "An embedded query reads every column from a table; list the needed columns explicitly.",
	},
	{
		ID:          SQLLeadingWildcard,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityWarning,
		Title:       "LIKE pattern with leading wildcard",
		Description: "A LIKE '%...' predicate prevents index usage and forces a full table scan.",
	},
	{
		ID:          SQLDeepPagination,
		Category:    model.CategoryPerformanceIssue,
		Severity:    model.SeverityWarning,
		Title:       "Deep OFFSET pagination",
		Description: "An embedded query pages with a large OFFSET; use keyset pagination instead.",
	},

	// style-issue
	{
		ID:          WildcardImport,
		Category:    model.CategoryStyleIssue,
		Severity:    model.SeverityInfo,
		Title:       "Wildcard import",
		Description: "from module import * pollutes the namespace and hides where names come from.",
	},
	{
		ID:          MultipleImportsPerLine,
		Category:    model.CategoryStyleIssue,
		Severity:    model.SeverityInfo,
		Title:       "Multiple imports on one line",
		Description: "import a, b, c on a single line; PEP 8 asks for one import per line.",
	},
	{
		ID:          NonConventionalNaming,
		Category:    model.CategoryStyleIssue,
		Severity:    model.SeverityInfo,
		Title:       "Non-conventional naming",
		Description: "A class is not CapWords or a function is camelCase instead of snake_case.",
	},
	{
		ID:          TooManyParameters,
		Category:    model.CategoryStyleIssue,
		Severity:    model.SeverityInfo,
		Title:       "Too many parameters",
		Description: "A function takes more parameters than can reasonably be kept in mind.",
	},
	{
		ID:          DeepNesting,
		Category:    model.CategoryStyleIssue,
		Severity:    model.SeverityWarning,
		Title:       "Deeply nested control flow",
		Description: "Control-flow blocks are nested four or more levels deep.",
	},
}
