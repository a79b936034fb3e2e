// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:generate go run -tags docgen ../doc_generate.go -cmd .

/*
Jdu upgrades a Maven dependency across many git repositories.

Usage:

	jdu <command> [arguments]

The commands are:

# upgrade

NAME:

	jdu upgrade - upgrade the dependency in every configured repository

USAGE:

	jdu upgrade [-c <config>] [--dry-run] [--keep] [--output table|json|yaml]

DESCRIPTION:

	Examples:
	  jdu upgrade
	  jdu upgrade -c jdu.yaml --dry-run --keep
	  JDU_SERVER_TOKEN=... jdu upgrade -c config.json --output json

	Repositories are processed one at a time. For each repository, jdu will:
	  1. Clone the origin branch (or the default branch) into the workspace
	  2. Create the destiny branch, if configured; it must not exist yet
	  3. Rewrite matching versions in every pom.xml
	  4. Run verifyCommand, if configured
	  5. Commit the changes; repositories without changes are skipped
	  6. Push the branch
	  7. Open a pull request (GitHub, with createPullRequest)

	A failure only aborts the repository it happened in. The command exits with
	an error when any repository failed.

OPTIONS:

	--config file, -c file         read the configuration from file (default: config.json, jdu.yaml, jdu.yml or jdu.toml)
	--token token                  server access token, overrides serverToken [$JDU_SERVER_TOKEN]
	--verbose, -v                  enable debug logging and print executed commands (default: false)
	--dry-run                      rewrite and commit in the local clones, but never push (default: false)
	--keep                         keep the workspace and clones after the run (default: false)
	--workspace directory          create the workspace in directory (default: home directory)
	--output format                report format: table, json or yaml (default: "table")
	--help, -h                     show help

# check

NAME:

	jdu check - validate the configuration and print the plan

USAGE:

	jdu check [-c <config>]

DESCRIPTION:

	Examples:
	  jdu check
	  jdu check -c jdu.yaml

	Validates the configuration and prints, for every repository, the URL it
	will be cloned from and the branches that will be used. Nothing is cloned.

OPTIONS:

	--config file, -c file  read the configuration from file (default: config.json, jdu.yaml, jdu.yml or jdu.toml)
	--token token           server access token, overrides serverToken [$JDU_SERVER_TOKEN]
	--verbose, -v           enable debug logging and print executed commands (default: false)
	--help, -h              show help

# rewrite

NAME:

	jdu rewrite - rewrite pom.xml files in a local directory

USAGE:

	jdu rewrite [-C <dir>] --dependency <name> --version <version> [--artifact-version <version>]

DESCRIPTION:

	Examples:
	  jdu rewrite --dependency jackson-databind --version 2.17.0
	  jdu rewrite -C ~/src/orders --dependency com.google.guava:guava --version 33.0.0-jre

	Rewrites every pom.xml below the directory the same way "jdu upgrade" does,
	without cloning, committing or pushing.

OPTIONS:

	-C directory                        rewrite the poms below directory (default: ".")
	--dependency value                  artifactId, or groupId:artifactId, to upgrade
	--version version                   target version
	--artifact-version version          also set the project version to version
	--ignore pattern [ --ignore pattern ]  skip poms matching the gitignore-style pattern
	--allow-downgrade                   replace versions newer than the target (default: false)
	--verbose, -v                       enable debug logging (default: false)
	--output format                     report format: table, json or yaml (default: "table")
	--help, -h                          show help

# init

NAME:

	jdu init - write a sample configuration file

USAGE:

	jdu init [path]

DESCRIPTION:

	Examples:
	  jdu init
	  jdu init configs/spring-boot.yaml

	Writes a commented sample configuration to path (default: jdu.yaml). An
	existing file is never overwritten.

OPTIONS:

	--help, -h  show help

# version

NAME:

	jdu version - print the version

USAGE:

	jdu version

OPTIONS:

	--help, -h  show help
*/
package main
