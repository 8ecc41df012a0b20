package config

import (
	"strings"

	"github.com/alecthomas/kong"
	"github.com/crazy-max/zipstore/pkg/vpath"
	"github.com/pkg/errors"
)

type Cli struct {
	Version kong.VersionFlag

	LogLevel   string `kong:"name=log-level,env=LOG_LEVEL,default=info,help='Set log level.'"`
	LogJSON    bool   `kong:"name=log-json,env=LOG_JSON,default=false,help='Enable JSON logging output.'"`
	LogCaller  bool   `kong:"name=log-caller,env=LOG_CALLER,default=false,help='Add file:line of the caller to log output.'"`
	LogNoColor bool   `kong:"name=log-nocolor,env=LOG_NOCOLOR,default=false,help='Disable colorized output.'"`

	Archive ArchiveCmd `kong:"cmd,name=archive,help='Archive files of a workspace.'"`
	Ls      LsCmd      `kong:"cmd,name=ls,help='List a folder of an archive.'"`
	Cat     CatCmd     `kong:"cmd,name=cat,help='Print a file of an archive.'"`
	Glob    GlobCmd    `kong:"cmd,name=glob,help='List files of an archive matching a pattern.'"`
	Extract ExtractCmd `kong:"cmd,name=extract,help='Extract an archive in a local folder.'"`
	Rm      RmCmd      `kong:"cmd,name=rm,help='Delete an archive.'"`
}

type ArchiveCmd struct {
	Store                bool   `kong:"name=store,env=ZIPSTORE_STORE,default=false,help='Store entries without compression.'"`
	SelectiveCompression bool   `kong:"name=selective-compression,env=ZIPSTORE_SELECTIVE_COMPRESSION,default=false,help='Do not compress files that are already compressed.'"`
	Pattern              string `kong:"name=pattern,default='**',help='Files of the workspace to archive when no artifact is given.'"`

	Archive   string   `kong:"arg,required,name=archive,type=path,help='Archive file. (eg. ./archive.zip)'"`
	Workspace string   `kong:"arg,required,name=workspace,type=existingdir,help='Folder the artifacts are read from.'"`
	Artifacts []string `kong:"arg,optional,name=artifact,help='Artifact as path or dest=src, relative to the workspace.'"`
}

// Mapping returns the destination to source pairs given as arguments.
func (c ArchiveCmd) Mapping() (map[string]string, error) {
	mapping := make(map[string]string, len(c.Artifacts))
	for _, artifact := range c.Artifacts {
		dest, src, ok := strings.Cut(artifact, "=")
		if !ok {
			src = dest
		}
		dest = vpath.Clean(dest)
		if dest == "" || src == "" {
			return nil, errors.Errorf("invalid artifact %q", artifact)
		}
		if _, ok := mapping[dest]; ok {
			return nil, errors.Errorf("duplicate artifact %q", dest)
		}
		mapping[dest] = src
	}
	return mapping, nil
}

type LsCmd struct {
	Recursive bool `kong:"name=recursive,short=r,default=false,help='List sub folders too.'"`

	Archive string `kong:"arg,required,name=archive,type=path,help='Archive file.'"`
	Path    string `kong:"arg,optional,name=path,help='Folder in the archive.'"`
}

type CatCmd struct {
	Archive string `kong:"arg,required,name=archive,type=path,help='Archive file.'"`
	Path    string `kong:"arg,required,name=path,help='File in the archive.'"`
}

type GlobCmd struct {
	Archive string `kong:"arg,required,name=archive,type=path,help='Archive file.'"`
	Pattern string `kong:"arg,required,name=pattern,help='Ant-style pattern. (eg. **/*.log)'"`
	Path    string `kong:"arg,optional,name=path,help='Folder in the archive the pattern is relative to.'"`
}

type ExtractCmd struct {
	Includes        []string `kong:"name=include,help='Include a subset of files/dirs from the archive.'"`
	RmDist          bool     `kong:"name=rm-dist,default=false,help='Removes dist folder.'"`
	ContinueOnError bool     `kong:"name=continue-on-error,default=false,help='Skip entries that cannot be extracted.'"`

	Archive string `kong:"arg,required,name=archive,type=existingfile,help='Archive file.'"`
	Dist    string `kong:"arg,required,name=dist,type=path,help='Dist folder. (eg. ./dist)'"`
}

type RmCmd struct {
	Archive string `kong:"arg,required,name=archive,type=path,help='Archive file.'"`
}
