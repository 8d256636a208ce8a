package exclude

// defaultExtensions are file-type exclusions applied before any glob
// pattern is considered at all: binary, media, archive, font, and
// database-dump extensions that are never useful as prompt context.
var defaultExtensions = []string{
	"png", "jpg", "jpeg", "gif", "bmp", "ico", "webp", "svg", "avif",
	"mp3", "wav", "flac", "ogg", "mp4", "avi", "mov", "mkv", "webm",
	"zip", "tar", "gz", "tgz", "bz2", "xz", "rar", "7z",
	"ttf", "otf", "woff", "woff2", "eot",
	"db", "sqlite", "sqlite3",
	"exe", "dll", "so", "dylib", "bin", "class", "pyc", "o", "a",
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
	"lock",
}

// defaultPatterns are glob exclusions applied after the extension check:
// dependency directories, build output, VCS metadata, lockfiles by name,
// environment files, IDE directories, test directories, and documentation.
var defaultPatterns = []string{
	"node_modules/",
	"vendor/",
	".git/",
	".svn/",
	".hg/",
	"dist/",
	"build/",
	"out/",
	"target/",
	".venv/",
	"venv/",
	"__pycache__/",
	".next/",
	".nuxt/",
	".cache/",
	"coverage/",
	".idea/",
	".vscode/",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"Cargo.lock",
	"go.sum",
	".env",
	".env.*",
	"*.min.js",
	"*.min.css",
	"*.map",
	"test/",
	"tests/",
	"__tests__/",
	"*.test.*",
	"*.spec.*",
	"docs/",
	".editorconfig",
	".prettierrc*",
	".eslintrc*",
}
