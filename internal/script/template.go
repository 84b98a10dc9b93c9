package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"
)

// ErrTemplate indicates a malformed script template. It is fatal for the whole
// run: the same template is used for every scenario.
var ErrTemplate = errors.New("script template")

// The script body is JavaScript, so the Go template uses [[ ]] delimiters to
// stay out of the way of the {{...}} placeholder syntax the script resolves
// at iteration time.
var requiredMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\[\[\s*\.OptionsJSON\s*\]\]`),
	regexp.MustCompile(`\[\[\s*\.VarsJSON\s*\]\]`),
	regexp.MustCompile(`\[\[\s*\.StepsJSON\s*\]\]`),
}

var markerNames = []string{".OptionsJSON", ".VarsJSON", ".StepsJSON"}

// Template wraps a parsed load-script template.
type Template struct {
	tmpl *template.Template
}

// ParseTemplate validates the required markers and parses the template text.
func ParseTemplate(text string) (*Template, error) {
	for i, re := range requiredMarkers {
		if !re.MatchString(text) {
			return nil, fmt.Errorf("%w: missing required marker [[%s]]", ErrTemplate, markerNames[i])
		}
	}
	t, err := template.New("script").Delims("[[", "]]").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return &Template{tmpl: t}, nil
}

// LoadTemplate reads and parses a custom template file.
func LoadTemplate(path string) (*Template, error) {
	clean := filepath.Clean(path)
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", clean, err)
	}
	return ParseTemplate(string(data))
}

// Default returns the built-in k6 template.
func Default() *Template {
	t, err := ParseTemplate(defaultTemplate)
	if err != nil {
		// The built-in template is covered by tests; failing here means the
		// binary itself is broken.
		panic(err)
	}
	return t
}

const defaultTemplate = `import http from 'k6/http';
import { check, fail } from 'k6';

export const options = [[.OptionsJSON]];

const initialVars = [[.VarsJSON]];

const steps = [[.StepsJSON]];

let vars = {};

// {{name}} -> captured variable (empty string when never extracted),
// {{$randomInt(min,max)}} -> fresh random integer, drawn per call.
function substitute(input) {
    let out = String(input);
    out = out.replace(/\{\{\$randomInt\((-?\d+),\s*(-?\d+)\)\}\}/g, function (_, lo, hi) {
        lo = parseInt(lo, 10);
        hi = parseInt(hi, 10);
        return String(lo + Math.floor(Math.random() * (hi - lo + 1)));
    });
    out = out.replace(/\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}/g, function (_, name) {
        return name in vars ? String(vars[name]) : '';
    });
    return out;
}

function jsonPath(value, path) {
    let cur = value;
    for (const part of path.split('.')) {
        if (cur === null || cur === undefined) {
            return undefined;
        }
        cur = cur[part];
    }
    return cur;
}

function buildURL(step) {
    let url = substitute(step.url);
    const params = step.params || {};
    const pairs = Object.keys(params).map(function (k) {
        return encodeURIComponent(k) + '=' + encodeURIComponent(substitute(params[k]));
    });
    if (pairs.length > 0) {
        url += (url.indexOf('?') >= 0 ? '&' : '?') + pairs.join('&');
    }
    return url;
}

function checkLabel(c) {
    if (c.type === 'jsonPathValue') {
        return 'jsonPathValue ' + c.path;
    }
    return c.type;
}

function makePredicate(c) {
    if (c.type === 'statusCode') {
        return function (r) {
            return r.status === parseInt(substitute(String(c.expected)), 10);
        };
    }
    if (c.type === 'bodyContains') {
        return function (r) {
            return String(r.body).indexOf(substitute(String(c.expected))) >= 0;
        };
    }
    return function (r) {
        try {
            const v = jsonPath(JSON.parse(r.body), c.path);
            return String(v) === substitute(String(c.expected));
        } catch (e) {
            return false;
        }
    };
}

function runStep(step) {
    const headers = {};
    for (const k in step.headers || {}) {
        headers[k] = substitute(step.headers[k]);
    }
    let body = null;
    if (step.body !== undefined && step.body !== null) {
        body = typeof step.body === 'string' ? substitute(step.body) : substitute(JSON.stringify(step.body));
        if (!headers['Content-Type']) {
            headers['Content-Type'] = 'application/json';
        }
    }

    const res = http.request(step.method, buildURL(step), body, { headers: headers, tags: step.tags || {} });

    const spec = {};
    for (const c of step.checks || []) {
        spec[step.name + ' :: ' + checkLabel(c)] = makePredicate(c);
    }
    if (Object.keys(spec).length > 0 && !check(res, spec)) {
        fail(step.name + ': check failed');
    }

    for (const e of step.extract || []) {
        let v;
        try {
            v = jsonPath(JSON.parse(res.body), e.path);
        } catch (err) {
            v = undefined;
        }
        vars[e.variable] = v === undefined || v === null ? '' : String(v);
    }
}

export default function () {
    vars = Object.assign({}, initialVars);
    for (const step of steps) {
        runStep(step);
    }
}
`
