// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rules carries the built-in rule set: the recurring compile
// error classes of the generated TypeScript/Fastify/Prisma backend,
// expressed as engine rules. This is data about one codebase's defects;
// the engine knows nothing about any of it.
package rules

import (
	"bytes"

	"github.com/walteh/fixrc/pkg/rule"
)

// 🗂️ Default returns the registry of built-in stages. Stage order is
// the dependency chain: paths are normalized before names, names before
// handler rewrites, handler rewrites before import insertion (the
// rewrites introduce the identifiers the import rules look for), and
// schema repairs last.
func Default() (*rule.Registry, error) {
	return rule.NewRegistry(defaultStages()...)
}

func defaultStages() []rule.Stage {
	return []rule.Stage{
		{Name: "normalize", Rules: normalizeRules()},
		{Name: "models", Rules: modelRules()},
		{Name: "handlers", Rules: handlerRules()},
		{Name: "imports", Rules: importRules()},
		{Name: "cleanup", Rules: cleanupRules()},
		{Name: "schema", Rules: schemaRules()},
	}
}

func normalizeRules() []rule.Rule {
	return []rule.Rule{
		// The route generator escaped quotes that were never inside a
		// string, leaving \' literals all over routes and repositories.
		rule.MustPattern("strip-escaped-quotes",
			"{routes,repositories}/**",
			`\\'`,
			`'`,
			rule.WithTags("normalize", "quotes")),

		rule.MustStructural("alias-imports",
			"**/*.ts",
			aliasImportEdits,
			rule.WithTags("normalize", "imports"),
			rule.WithPrecondition(func(path string, content []byte) bool {
				return bytes.Contains(content, []byte("'@")) || bytes.Contains(content, []byte(`"@`))
			})),

		// Service files sit one level under the root; the generator
		// emitted repository imports two levels up.
		rule.MustPattern("service-import-depth",
			"services/**",
			`from\s+(['"])\.\./\.\./repositories`,
			`from ${1}../repositories`,
			rule.WithTags("normalize", "imports")),

		rule.MustPattern("collapse-dot-updir",
			"**/*.ts",
			`from\s+(['"])\./\.\./`,
			`from ${1}../`,
			rule.WithTags("normalize", "imports")),
	}
}

func modelRules() []rule.Rule {
	return []rule.Rule{
		rule.MustStructural("rename-hyphenated-services",
			"{services,routes}/**",
			classRenameEdits,
			rule.WithTags("models")),
		rule.MustStructural("rename-snake-case-models",
			"{services,routes,repositories}/**",
			modelRenameEdits,
			rule.WithTags("models")),
	}
}

func handlerRules() []rule.Rule {
	const typedParams = `async (request: FastifyRequest, reply: FastifyReply) =>`

	return []rule.Rule{
		// Route registrations whose handler declares no parameters but
		// whose body uses request/reply. The route prefix is captured
		// within the line, never across one.
		rule.MustPattern("route-handler-params",
			"routes/*.ts",
			`(\.(?:get|post|put|patch|delete)\s*\([^)\n]*,\s*)async\s*\(\s*\)\s*=>`,
			`${1}`+typedParams,
			rule.WithTags("handlers")),

		rule.MustPattern("middleware-chain-handler-params",
			"routes/*.ts",
			`((?:authenticate|requireRole\([^)\n]*\)|requirePermission\([^)\n]*\)),\s*)async\s*\(\s*\)\s*=>`,
			`${1}`+typedParams,
			rule.WithTags("handlers")),

		rule.MustPattern("handler-req-res-rename",
			"**/*.ts",
			`async\s*\(\s*req\s*,\s*res\s*\)\s*=>\s*{`,
			typedParams+` {`,
			rule.WithTags("handlers")),

		rule.MustPattern("handler-untyped-params",
			"{routes,middleware}/**",
			`async\s*\(\s*request\s*,\s*reply\s*\)\s*=>`,
			typedParams,
			rule.WithTags("handlers")),

		rule.MustPattern("handler-wrong-typed-names",
			"routes/*.ts",
			`async\s*\(\s*req\s*:\s*\w+\s*,\s*res\s*:\s*\w+\s*\)`,
			`async (request: FastifyRequest, reply: FastifyReply)`,
			rule.WithTags("handlers")),

		// Underscore-prefixed parameters in handlers whose body does
		// reference them without the underscore.
		rule.MustPattern("handler-underscore-params",
			"**/*.ts",
			`async\s*\(\s*_request\s*:\s*FastifyRequest\s*,\s*_reply\s*:\s*FastifyReply\s*\)\s*=>`,
			typedParams,
			rule.WithTags("handlers"),
			rule.WithPrecondition(func(path string, content []byte) bool {
				return bytes.Contains(content, []byte("request.")) || bytes.Contains(content, []byte("reply."))
			})),

		rule.MustPattern("middleware-done-signature",
			"middleware/*.ts",
			`export\s+async\s+function\s+(\w+)\s*\(\s*request\s*,\s*reply\s*,\s*done\s*\)`,
			`export async function ${1}(request: FastifyRequest, reply: FastifyReply, done: () => void)`,
			rule.WithTags("handlers")),
	}
}

func importRules() []rule.Rule {
	return []rule.Rule{
		rule.MustStructural("dedupe-import-names",
			"**/*.ts",
			dedupeImportNameEdits,
			rule.WithTags("imports")),
		rule.MustStructural("dedupe-import-lines",
			"**/*.ts",
			dedupeImportLineEdits,
			rule.WithTags("imports")),
		rule.MustPattern("import-missing-comma",
			"**/*.ts",
			`import\s*{\s*(\w+)\s+(\w+)\s*}`,
			`import { ${1}, ${2} }`,
			rule.WithTags("imports")),
		rule.MustStructural("ensure-fastify-types",
			"**/*.ts",
			ensureFastifyTypeEdits,
			rule.WithTags("imports"),
			rule.WithPrecondition(usesFastifyHelpers)),
	}
}

func cleanupRules() []rule.Rule {
	return []rule.Rule{
		rule.MustStructural("unused-catch-rename",
			"**/*.ts",
			unusedCatchEdits,
			rule.WithTags("cleanup")),
		rule.MustStructural("used-catch-restore",
			"**/*.ts",
			restoreCatchEdits,
			rule.WithTags("cleanup")),
		rule.MustStructural("uncomment-used-logger-import",
			"**/*.ts",
			uncommentLoggerImportEdits,
			rule.WithTags("cleanup", "imports")),
		rule.MustStructural("comment-unused-logger-import",
			"**/*.ts",
			commentLoggerImportEdits,
			rule.WithTags("cleanup", "imports")),
	}
}

func schemaRules() []rule.Rule {
	return []rule.Rule{
		rule.MustStructural("postal-zip-mirror",
			"services/*.ts",
			postalZipEdits,
			rule.WithTags("schema")),
		commentFieldRule("disable-bio-field", "services/user.service.ts", "bio"),
		commentFieldRule("disable-inactive-field", "services/user.service.ts", "isActive"),
		commentFieldRule("disable-event-type-field", "services/webhook.service.ts", "eventType"),
		commentFieldRule("disable-status-field", "services/webhook.service.ts", "status"),
		commentFieldRule("disable-resolved-at-field", "services/support.service.ts", "resolvedAt"),
	}
}
