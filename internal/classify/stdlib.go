package classify

// standardLibs is the fixed Python standard-library name table used to
// categorize imports by top-level module name.
var standardLibs = map[string]struct{}{
	"os": {}, "sys": {}, "json": {}, "yaml": {}, "pathlib": {},
	"typing": {}, "collections": {}, "itertools": {}, "functools": {},
	"datetime": {}, "time": {}, "re": {}, "math": {}, "random": {},
	"string": {}, "io": {}, "csv": {}, "xml": {}, "html": {},
	"urllib": {}, "http": {}, "socket": {}, "threading": {},
	"multiprocessing": {}, "asyncio": {}, "logging": {}, "unittest": {},
	"doctest": {}, "pdb": {}, "pickle": {}, "sqlite3": {},
	"hashlib": {}, "base64": {}, "uuid": {}, "ast": {},
	"subprocess": {}, "tempfile": {},
}
