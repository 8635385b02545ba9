/*
Package matpack is the back end of a material compiler: it packages the
shaders of a material for loading at runtime.

We will stick to the following definitions:

▪︎ A "material package" is the compiled form of one material: a chunked
binary holding the material's name, version, parameters and, per graphics
backend, a table of shaders (package shader).

▪︎ A "variant key" is a 32-bit number addressing one shader of a material
by shading model, pipeline stage and variant flags (package variant).

▪︎ An "indexed blob" is the runtime artifact: reflection metadata, an index
of variant keys and the shader contents, laid out for loading without
parsing the package (package blob).

▪︎ A "header" is the package written as a listing of byte literals, to be
compiled into an application (package header).

Package compiler ties these together; commands matc and matcli expose them.

# Status

Reflection metadata is JSON. Shader contents are passed through unchanged;
there is no optimization or compression of shaders.

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package matpack
