// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	NoInputsId
	InputNotFoundId
	InvalidArchiveId
	RewriteFailedId
	OutputNotWritableId
	InvalidRuleId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // reference documentation for the failure class
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration!

shade reads ` + "`shade.cue`" + ` from the current directory, or the file given
with ` + "`--config`" + `. The file is validated against the built-in schema.

## Things you can try:
- Print the configuration shade would use without a file:
~~~
$ shade config show
~~~
- Write a commented template and edit it:
~~~
$ shade config init
~~~
- Check the field named in the error for a typo or a wrong type`,
	}

	noInputsIssue = &Issue{
		id: NoInputsId,
		mdMsg: `
# Nothing to merge!

No input archives were given on the command line or in ` + "`inputs`" + `.

## Things you can try:
~~~
$ shade build -o app-all.jar app.jar lib/*.jar
~~~`,
	}

	inputNotFoundIssue = &Issue{
		id: InputNotFoundId,
		mdMsg: `
# Input archive not found!

One of the input archives does not exist or cannot be read.

## Things you can try:
- Check the path for typos; relative paths are resolved from the current directory
- Make sure the dependency was downloaded before running shade`,
	}

	invalidArchiveIssue = &Issue{
		id: InvalidArchiveId,
		mdMsg: `
# Input is not a valid archive!

An input could not be opened as a zip container. Every input must be a jar
(or any zip file).

## Things you can try:
- Inspect the file:
~~~
$ shade inspect path/to/file.jar
~~~
- Re-download the dependency; truncated downloads are the usual cause`,
		docLinks: []HttpLink{"https://docs.oracle.com/javase/8/docs/technotes/guides/jar/jar.html"},
	}

	rewriteFailedIssue = &Issue{
		id: RewriteFailedId,
		mdMsg: `
# A class could not be relocated!

shade rewrites every class of a relocated package. The class named in the
error is not a well-formed class file, so the merge was stopped rather than
producing a partially relocated output.

## Things you can try:
- Exclude the offending entry with a filter if the archive ships broken classes
- Narrow the relocation with ` + "`includes`" + ` / ` + "`excludes`" + ` so the class is not touched`,
		docLinks: []HttpLink{"https://docs.oracle.com/javase/specs/jvms/se21/html/jvms-4.html"},
	}

	outputNotWritableIssue = &Issue{
		id: OutputNotWritableId,
		mdMsg: `
# Cannot write the output archive!

The output file or one of its parent directories could not be created.

## Things you can try:
- Check the permissions of the target directory
- Choose another location with ` + "`-o`" + ``,
	}

	invalidRuleIssue = &Issue{
		id: InvalidRuleId,
		mdMsg: `
# Invalid relocation, filter or transformer!

A rule in the configuration or on the command line could not be built.

## Things you can try:
- Relocations take a dotted package: ` + "`--relocate com.google.common:myapp.shaded.guava`" + `
- Globs use ` + "`*`" + ` within one directory and ` + "`**`" + ` across directories
- Raw relocations must be valid regular expressions`,
		docLinks: []HttpLink{"https://github.com/bmatcuk/doublestar#patterns"},
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		noInputsIssue.Id():          noInputsIssue,
		inputNotFoundIssue.Id():     inputNotFoundIssue,
		invalidArchiveIssue.Id():    invalidArchiveIssue,
		rewriteFailedIssue.Id():     rewriteFailedIssue,
		outputNotWritableIssue.Id(): outputNotWritableIssue,
		invalidRuleIssue.Id():       invalidRuleIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
